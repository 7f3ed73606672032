// Package core provides money parsing and handling utilities.
//
// Amounts are kept as arbitrary-precision decimals so that summing many
// monthly rows never drifts the way float64 would.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount. The zero value is $0.00.
type Money struct {
	Amount decimal.Decimal
}

// NewMoney wraps a decimal amount.
func NewMoney(d decimal.Decimal) Money {
	return Money{Amount: d}
}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{Amount: decimal.New(cents, -2)}
}

// ParseMoney parses a spreadsheet revenue cell.
//
// It accepts an optional currency sign, thousands separators and either a
// leading minus or accounting-style parentheses for negative values.
//
// Examples:
//
//	ParseMoney("1234.5")      -> 1234.50
//	ParseMoney("$1,234.56")   -> 1234.56
//	ParseMoney("-$20")        -> -20.00
//	ParseMoney("(1,000.00)")  -> -1000.00
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		if negative {
			return Money{}, ErrInvalidAmount
		}
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if negative {
		d = d.Neg()
	}
	return Money{Amount: d}, nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount.Add(o.Amount)}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Cents returns the amount rounded to whole cents.
func (m Money) Cents() int64 {
	return m.Amount.Round(2).Shift(2).IntPart()
}

// String renders the amount as "$1,234.56", with a leading minus for
// negative values.
func (m Money) String() string {
	rounded := m.Amount.Round(2)
	fixed := rounded.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if rounded.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Sum adds up a list of amounts.
func Sum(amounts ...Money) Money {
	total := Money{}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
