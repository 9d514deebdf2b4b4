// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/glimpse/internal/nn"
	"github.com/born-ml/glimpse/internal/optim"
)

// Optimizer applies one update step from a list of gradients.
type Optimizer = optim.Optimizer

// Config represents the shared configuration for New.
type Config = optim.Config

// Method names an update rule.
type Method = optim.Method

// Update rules accepted by New.
const (
	FinetuningAdagrad = optim.FinetuningAdagrad
	MethodAdagrad     = optim.MethodAdagrad
	MethodSGD         = optim.MethodSGD
	MethodAdam        = optim.MethodAdam
)

// Errors returned by optimizers.
var (
	ErrGradientCount = optim.ErrGradientCount
	ErrUnknownMethod = optim.ErrUnknownMethod
)

// New creates the optimizer named by method over params.
func New(method Method, params []*nn.Parameter, cfg Config) (Optimizer, error) {
	return optim.New(method, params, cfg)
}

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// Adagrad (accumulated squared gradient)

// Adagrad represents the Adagrad optimizer.
type Adagrad = optim.Adagrad

// AdagradConfig contains configuration for Adagrad optimizer.
type AdagradConfig = optim.AdagradConfig

// NewAdagrad creates a new Adagrad optimizer.
//
// Example:
//
//	opt := optim.NewAdagrad(params, optim.AdagradConfig{
//	    LR:                 0.01,
//	    GsumRegularization: 1e-4,
//	    MaxNorm:            0.8,
//	})
func NewAdagrad(params []*nn.Parameter, config AdagradConfig) *Adagrad {
	return optim.NewAdagrad(params, config)
}
