// Package money centralizes the fixed-point rules for balances and prices:
// two fraction digits, ties rounded up. Every amount is quantized before it
// is compared or persisted.
package money

import "github.com/shopspring/decimal"

// Quantize rounds to two decimal places. Amounts in this system are never
// negative, so decimal's round-half-away-from-zero is exactly round-half-up
// (3 * 0.015 quantizes to 0.05, not 0.04).
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToCents converts a quantized amount to integer cents for storage. Money
// columns are integers so the database can do balance arithmetic portably.
func ToCents(d decimal.Decimal) int64 {
	return Quantize(d).Shift(2).IntPart()
}

// FromCents converts stored cents back to a decimal amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// LineTotal computes quantity x unit price, quantized.
func LineTotal(quantity int, unit decimal.Decimal) decimal.Decimal {
	return Quantize(decimal.NewFromInt(int64(quantity)).Mul(unit))
}
