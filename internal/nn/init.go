package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/glimpse/internal/tensor"
)

// Xavier returns a tensor drawn from the Glorot uniform distribution
// U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) (*tensor.Tensor, error) {
	t, err := tensor.Zeros(shape)
	if err != nil {
		return nil, err
	}
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	data := t.Data()
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * bound
	}
	return t, nil
}

// Uniform returns a tensor drawn from U(-bound, bound).
func Uniform(bound float64, shape tensor.Shape, rng *rand.Rand) (*tensor.Tensor, error) {
	t, err := tensor.Zeros(shape)
	if err != nil {
		return nil, err
	}
	data := t.Data()
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * bound
	}
	return t, nil
}
