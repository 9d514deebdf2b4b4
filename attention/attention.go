// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package attention provides the Gaussian position policy and the covariance
// hysteresis controller that switches it between exploitation and
// exploration.
//
// # Basic Usage
//
//	g, err := attention.NewGaussian(
//	    mat.NewDense(1, 1, []float64{0.01}),
//	    mat.NewDense(1, 1, []float64{0.09}),
//	)
//	ctrl, err := attention.NewController(g, g.Small(), g.Large())
//
//	// After each batch:
//	sw, err := ctrl.Step(batchReward / batchSize)
//
// The controller switches after Patience+1 consecutive qualifying batches.
package attention

import (
	"github.com/born-ml/glimpse/internal/attention"
	"gonum.org/v1/gonum/mat"
)

// Controller thresholds.
const (
	RewardThreshold = attention.RewardThreshold
	Patience        = attention.Patience
)

// Mode selects the active covariance.
type Mode = attention.Mode

// Covariance modes.
const (
	Small = attention.Small
	Large = attention.Large
)

// Covariance is the collaborator that owns the active covariance.
type Covariance = attention.Covariance

// Controller is the covariance hysteresis state machine.
type Controller = attention.Controller

// Switch describes a completed covariance switch.
type Switch = attention.Switch

// Gaussian is a multivariate normal position policy.
type Gaussian = attention.Gaussian

// Errors returned by this package.
var (
	ErrNotSquare  = attention.ErrNotSquare
	ErrSingular   = attention.ErrSingular
	ErrNoMatrices = attention.ErrNoMatrices
)

// NewController creates a controller in Small mode.
func NewController(target Covariance, small, large mat.Matrix) (*Controller, error) {
	return attention.NewController(target, small, large)
}

// NewGaussian creates a policy with the small covariance active.
func NewGaussian(small, large *mat.Dense) (*Gaussian, error) {
	return attention.NewGaussian(small, large)
}
