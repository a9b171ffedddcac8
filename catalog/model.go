// Package catalog defines the book model and the polymorphic Store contract
// implemented by the sqlite, remote and in-memory variants.
package catalog

// DefaultCategory is used when an item is created without a category.
const DefaultCategory = "General"

// FieldSet marks item fields whose values the backing store did not supply.
// A remote backend that omits a field yields an explicit unknown instead of
// a silent zero/"General" default.
type FieldSet uint8

// Year and cover are optional in the model itself, so their absence is
// plain absence; only the fields with business defaults are maskable.
const (
	FieldPrice FieldSet = 1 << iota
	FieldStock
	FieldCategory
)

func (f FieldSet) Has(field FieldSet) bool { return f&field != 0 }

func (f FieldSet) String() string {
	if f == 0 {
		return "none"
	}
	names := []struct {
		bit  FieldSet
		name string
	}{
		{FieldPrice, "price"},
		{FieldStock, "stock"},
		{FieldCategory, "category"},
	}
	out := ""
	for _, n := range names {
		if !f.Has(n.bit) {
			continue
		}
		if out != "" {
			out += ","
		}
		out += n.name
	}
	return out
}

// Item is a catalog entry. The ID is opaque to callers: either a
// store-minted token or a backend-issued number rendered as a string.
// Year is 0 when no publication year is recorded.
type Item struct {
	ID         string
	Title      string
	Author     string
	Category   string
	PriceCents int64
	Stock      int
	Year       int
	CoverURI   string

	// Unknown flags fields the backing store omitted; zero for local stores.
	Unknown FieldSet
}

// Normalized returns a copy with the default category applied.
func (it Item) Normalized() Item {
	if it.Category == "" {
		it.Category = DefaultCategory
	}
	return it
}
