package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// CrossEntropy computes the softmax cross-entropy loss of logits against a
// target class index, and its gradient with respect to the logits.
//
// Mathematical formulation:
//
//	Loss = -log_softmax(logits)[target]
//	∂L/∂logits = softmax(logits) - one_hot(target)
//
// The log-sum-exp trick keeps large logits from overflowing.
func CrossEntropy(logits []float64, target int) (loss float64, grad []float64, err error) {
	if target < 0 || target >= len(logits) {
		return 0, nil, fmt.Errorf("cross entropy: target %d out of range [0, %d)", target, len(logits))
	}
	lse := floats.LogSumExp(logits)
	grad = make([]float64, len(logits))
	for i, z := range logits {
		grad[i] = math.Exp(z - lse)
	}
	grad[target]--
	return lse - logits[target], grad, nil
}

// Softmax returns the normalized class probabilities of logits.
func Softmax(logits []float64) []float64 {
	lse := floats.LogSumExp(logits)
	out := make([]float64, len(logits))
	for i, z := range logits {
		out[i] = math.Exp(z - lse)
	}
	return out
}

// Argmax returns the index of the largest logit, the lowest on ties.
func Argmax(logits []float64) int {
	if len(logits) == 0 {
		return -1
	}
	return floats.MaxIdx(logits)
}
