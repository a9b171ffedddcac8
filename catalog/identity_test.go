package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseID_AcceptsNumeric verifies decimal ids round-trip through the
// codec.
func TestParseID_AcceptsNumeric(t *testing.T) {
	t.Parallel()

	n, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, "42", FormatID(n))
}

// TestParseID_RejectsOpaqueTokens verifies locally-minted and malformed ids
// fast-reject without panicking.
func TestParseID_RejectsOpaqueTokens(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"", "abc", "12x", "c6f2e9de-7d3a-4a1e-9f1a-000000000000", "1.5"} {
		_, ok := ParseID(id)
		assert.False(t, ok, "id %q must not parse", id)
	}
}

// TestFieldSet_String lists omitted fields in a stable order.
func TestFieldSet_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", FieldSet(0).String())
	assert.Equal(t, "price,stock", (FieldPrice | FieldStock).String())
	assert.True(t, (FieldStock | FieldCategory).Has(FieldCategory))
	assert.False(t, FieldStock.Has(FieldCategory))
}
