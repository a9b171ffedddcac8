package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestArithmetic covers Add/Mul over cents.
func TestArithmetic(t *testing.T) {
	t.Parallel()

	total := Money{Cents: 1000}.Mul(2).Add(Money{Cents: 2500})
	assert.Equal(t, int64(4500), total.Cents)
	assert.True(t, Money{}.IsZero())
}

// TestFormat groups thousands and keeps two decimals.
func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$0.00", Money{}.Format())
	assert.Equal(t, "$12,900.00", Money{Cents: 1290000}.Format())
	assert.Equal(t, "$4.50", Money{Cents: 450}.Format())
	assert.Equal(t, "-$1.05", Money{Cents: -105}.Format())
}
