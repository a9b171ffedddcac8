// Package money holds amounts in minor currency units (cents).
package money

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

type Money struct{ Cents int64 }

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Mul(qty int) Money { return Money{Cents: m.Cents * int64(qty)} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// Format renders the amount for display, e.g. "$1,249.90".
func (m Money) Format() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}

func (m Money) String() string { return m.Format() }
