package types

import (
	"fmt"
	"math"
)

// Money is a monetary amount in cents. All price arithmetic in the quote
// engine is integer arithmetic over cents so that percentage discounts and
// multi-month totals come out exact (19.99 * 100 seats * 0.95 must equal
// 1899.05, not 1899.0499...).
type Money int64

// NewMoney converts a whole-unit amount (e.g. 13000) into Money.
func NewMoney(units int64) Money {
	return Money(units * 100)
}

// MoneyFromFloat converts a decimal amount (e.g. a price from a remote plan
// record) into Money, rounding half away from zero to the nearest cent.
func MoneyFromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

// MulInt scales the amount by an integer factor (seats, months, pack count).
func (m Money) MulInt(n int) Money {
	return m * Money(n)
}

// PercentOff applies a percentage discount, rounding half up in cents.
// PercentOff(0) returns m unchanged.
func (m Money) PercentOff(percent int) Money {
	if percent <= 0 {
		return m
	}
	if percent >= 100 {
		return 0
	}
	scaled := int64(m) * int64(100-percent)
	// Round half up on the final division by 100.
	if scaled >= 0 {
		return Money((scaled + 50) / 100)
	}
	return Money((scaled - 50) / 100)
}

// Float64 returns the amount in whole currency units.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// String formats the amount with two decimal places, e.g. "1899.05".
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes Money as a JSON number of whole currency units with
// cent precision ("1899.05"). Clients treat quote amounts as plain decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON decimal number and stores it as cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v float64
	if _, err := fmt.Sscanf(string(data), "%f", &v); err != nil {
		return fmt.Errorf("invalid money value %q: %w", string(data), err)
	}
	*m = MoneyFromFloat(v)
	return nil
}
