// Package reinforce holds the reward side of the REINFORCE update: the
// per-example reward rule and the running baseline used to center the policy
// gradient.
package reinforce

import "github.com/born-ml/glimpse/internal/tensor"

// Fixed reward policy.
const (
	// Bonus is paid when the decision matches the target label.
	Bonus = 0.005

	// SaturationLimit vetoes any reward when the largest absolute attention
	// position exceeds it, whether or not the label matched.
	SaturationLimit = 0.8

	// WarmUpExamples is the number of observed examples that must be
	// exceeded before the baseline is first set.
	WarmUpExamples = 2000
)

// Reward scores a single decision. It is always 0 or Bonus.
func Reward(decision, label int, positions []float64) float64 {
	if Saturated(positions) {
		return 0
	}
	if decision == label {
		return Bonus
	}
	return 0
}

// Saturated reports whether the position diagnostic trips the veto.
func Saturated(positions []float64) bool {
	return tensor.MaxAbs(positions) > SaturationLimit
}
