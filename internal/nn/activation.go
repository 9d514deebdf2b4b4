package nn

import "math"

// Tanh applies tanh element-wise and returns a new slice.
func Tanh(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Tanh(v)
	}
	return out
}

// TanhBackward returns dy * (1 - y²) for y = tanh(x).
func TanhBackward(y, dy []float64) []float64 {
	out := make([]float64, len(y))
	for i := range y {
		out[i] = dy[i] * (1 - y[i]*y[i])
	}
	return out
}
