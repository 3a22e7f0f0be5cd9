package domain

import "math"

// Normalize scales v to unit L2 norm in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
	return v
}

// Round3 rounds to three decimal places for presentation.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
