package catalog

import "strconv"

// ParseID converts an opaque item identifier to the numeric form used by
// the sqlite store and the backend. A non-numeric id reports ok=false; the
// store variants use that to reject lookups and mutations without a round
// trip.
func ParseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatID renders a backend/sqlite numeric identifier as an opaque id.
func FormatID(n int64) string { return strconv.FormatInt(n, 10) }
