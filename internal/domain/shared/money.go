package shared

import "github.com/shopspring/decimal"

// Money is a fixed-point currency amount
type Money = decimal.Decimal

// Zero is the zero amount
var Zero = decimal.Zero

// NewMoney builds an amount from a float literal (config values, fixtures)
func NewMoney(v float64) Money {
	return decimal.NewFromFloat(v)
}

// ParseMoney parses a decimal string such as "1250.50"
func ParseMoney(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// Fraction converts a rate such as 0.05 into a decimal without binary float drift
func Fraction(rate float64) decimal.Decimal {
	return decimal.NewFromFloat(rate)
}

// RoundCents rounds an amount to two decimal places, half away from zero
func RoundCents(m Money) Money {
	return m.Round(2)
}
