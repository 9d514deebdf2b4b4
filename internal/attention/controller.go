// Package attention manages the covariance of the stochastic attention
// position distribution.
//
// The Controller is a hysteresis state machine that moves the policy between
// a small (exploitation) and a large (exploration) covariance after a
// sustained run of qualifying batches. The Gaussian type is the reference
// collaborator that holds the active covariance together with its inverse and
// determinant.
package attention

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Fixed switching policy.
const (
	// RewardThreshold separates low-reward batches from healthy ones, compared
	// against batch reward divided by batch size.
	RewardThreshold = 0.001

	// Patience is the number of qualifying batches that only advance the
	// pending counter. The next qualifying batch switches modes, so a switch
	// needs Patience+1 consecutive qualifying batches.
	Patience = 20
)

// Common errors.
var (
	ErrNotSquare  = errors.New("covariance matrix is not square")
	ErrSingular   = errors.New("covariance matrix is singular")
	ErrNoMatrices = errors.New("small and large covariance matrices are required")
)

// Mode is the active covariance regime.
type Mode int

// Covariance modes.
const (
	Small Mode = iota
	Large
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Small:
		return "small"
	case Large:
		return "large"
	default:
		return "unknown"
	}
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == Small {
		return Large
	}
	return Small
}

// Covariance receives a newly active covariance matrix and publishes its
// inverse and determinant to the attention layer.
type Covariance interface {
	SetCovariance(cov mat.Matrix) (inv *mat.Dense, det float64, err error)
}

// Switch describes a completed mode change.
type Switch struct {
	From, To    Mode
	Determinant float64
}

// Controller is the covariance hysteresis state machine. The initial mode
// is Small.
//
// A batch qualifies when it argues for leaving the current mode: reward
// ratio below RewardThreshold while Small, at or above it while Large. A
// non-qualifying batch resets the pending counter. The counter stays in
// [0, Patience] and every switch resets it.
type Controller struct {
	mode    Mode
	pending int
	small   mat.Matrix
	large   mat.Matrix
	target  Covariance
}

// NewController creates a controller in Small mode. It does not publish the
// small covariance; the attention layer is expected to start there.
func NewController(target Covariance, small, large mat.Matrix) (*Controller, error) {
	if target == nil || small == nil || large == nil {
		return nil, ErrNoMatrices
	}
	for _, m := range []mat.Matrix{small, large} {
		if r, c := m.Dims(); r != c {
			return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
		}
	}
	return &Controller{
		mode:   Small,
		small:  small,
		large:  large,
		target: target,
	}, nil
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Pending returns the hysteresis counter.
func (c *Controller) Pending() int {
	return c.pending
}

// Reset clears the pending counter without changing modes.
func (c *Controller) Reset() {
	c.pending = 0
}

// qualifies reports whether ratio argues for leaving the current mode.
func (c *Controller) qualifies(ratio float64) bool {
	low := ratio < RewardThreshold
	if c.mode == Small {
		return low
	}
	return !low
}

// Step feeds one batch's reward ratio (batch reward / batch size) to the
// state machine. It returns a non-nil Switch when the mode changed.
//
// If the collaborator fails, the mode is left unchanged and the counter is
// kept, so the next qualifying batch retries the switch.
func (c *Controller) Step(ratio float64) (*Switch, error) {
	if !c.qualifies(ratio) {
		c.pending = 0
		return nil, nil
	}
	if c.pending < Patience {
		c.pending++
		return nil, nil
	}

	next := c.mode.Other()
	matrix := c.small
	if next == Large {
		matrix = c.large
	}
	_, det, err := c.target.SetCovariance(matrix)
	if err != nil {
		return nil, fmt.Errorf("switch to %s covariance: %w", next, err)
	}

	sw := &Switch{From: c.mode, To: next, Determinant: det}
	c.mode = next
	c.pending = 0
	return sw, nil
}
