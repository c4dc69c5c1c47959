// internal/utils/money.go
package utils

import "math"

// RoundCurrency rounds to two decimals, half away from zero.
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}
