package glimpse

import (
	"iter"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/born-ml/glimpse/internal/tensor"
	"github.com/born-ml/glimpse/internal/trainer"
)

// PatternHalfWidth is the number of cells on each side of a pattern center.
const PatternHalfWidth = 1

// Dataset is an in-memory list of synthetic examples.
type Dataset []trainer.Example

// Generate builds n signals of length cfg.Length. Each signal is Gaussian
// noise with one flat pattern of width 2*PatternHalfWidth+1 placed at a random
// location in [-MaxCenter, MaxCenter]. The pattern amplitude encodes the class:
// class k has amplitude 1 - 2k/(Classes-1).
func Generate(n int, cfg Config, rng *rand.Rand) Dataset {
	cfg = cfg.withDefaults()
	data := make(Dataset, n)
	for i := range data {
		label := rng.IntN(cfg.Classes)
		center := (rng.Float64()*2 - 1) * MaxCenter

		signal := make([]float64, cfg.Length)
		for j := range signal {
			signal[j] = rng.NormFloat64() * cfg.Noise
		}
		c := cfg.index(center)
		for j := c - PatternHalfWidth; j <= c+PatternHalfWidth; j++ {
			if j >= 0 && j < cfg.Length {
				signal[j] += amplitude(label, cfg.Classes)
			}
		}

		data[i] = trainer.Example{
			Inputs:  []*tensor.Tensor{tensor.MustFromSlice(signal, tensor.Shape{cfg.Length})},
			Targets: []int{label},
		}
	}
	return data
}

func amplitude(label, classes int) float64 {
	return 1 - 2*float64(label)/float64(classes-1)
}

// All yields the examples in order.
func (d Dataset) All() iter.Seq[trainer.Example] {
	return slices.Values(d)
}

// Split returns the first (1-frac) of the examples for training and the rest
// for validation.
func (d Dataset) Split(frac float64) (train, val Dataset) {
	cut := len(d) - int(math.Round(frac*float64(len(d))))
	cut = max(0, min(cut, len(d)))
	return d[:cut], d[cut:]
}

// Shuffle permutes the examples in place.
func (d Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
}
