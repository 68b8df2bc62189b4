package domain

import "math"

// Round2 округляет денежную сумму до двух знаков после запятой.
// Половина округляется от нуля: 1.005 → 1.01, -1.005 → -1.01.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
