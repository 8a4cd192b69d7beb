package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds a money value to 2 decimal places, half away from zero
// (half-up for the non-negative amounts the ledgers deal with).
func Round2(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// RoundQty rounds a quantity to the 3 decimals stored in numeric(14,3) columns.
func RoundQty(x decimal.Decimal) decimal.Decimal {
	return x.Round(3)
}

// Cents returns the integer number of cents of a rounded money value.
func Cents(x decimal.Decimal) int64 {
	return Round2(x).Mul(hundred).IntPart()
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
