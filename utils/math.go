package utils

import "math"

// RoundFloat rounds a float64 to the specified number of decimal places.
// Balances and reward amounts are rounded to 8 places on every mutation.
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
