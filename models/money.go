package models

import "github.com/shopspring/decimal"

// Money is a decimal amount rendered in JSON with exactly two decimals ("22.00", not "22").
// Database scanning and valuing come from the embedded decimal.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d as a Money amount
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// RequireMoney parses s and panics when it is not a decimal number
func RequireMoney(s string) Money {
	return NewMoney(decimal.RequireFromString(s))
}

// MarshalJSON encodes the amount as a quoted string with two decimals
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts both quoted strings and bare JSON numbers
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}
