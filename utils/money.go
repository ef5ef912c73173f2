package utils

import "math"

// Round2 rounds x to 2 decimal places. Catalog prices and sale amounts are
// USD with cent precision; anything finer is a float artifact.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Cents converts a dollar amount to integer minor units, the form payment
// providers expect for line items.
func Cents(x float64) int64 {
	return int64(math.Round(x * 100))
}
