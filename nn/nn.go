// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers of the reference attention model and the
// Parameter type the trainer updates.
//
// # Overview
//
// This package contains:
//   - Parameter: a named trainable tensor
//   - Linear: fully connected layer with an explicit backward pass
//   - CrossEntropy: softmax cross-entropy loss and gradient
//   - Initialization: Xavier
package nn

import (
	"math/rand/v2"

	"github.com/born-ml/glimpse/internal/nn"
	"github.com/born-ml/glimpse/internal/tensor"
)

// Parameter is a named trainable tensor.
type Parameter = nn.Parameter

// Module is implemented by components that own parameters.
type Module = nn.Module

// Linear is a fully connected layer.
type Linear = nn.Linear

// NewParameter wraps an initialized tensor as a parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// NewLinear creates a Linear layer with Xavier weights and zero bias.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// Parameters flattens the parameters of several modules in order.
func Parameters(modules ...Module) []*Parameter {
	return nn.Parameters(modules...)
}

// Shapes returns the shapes of params in order.
func Shapes(params []*Parameter) []tensor.Shape {
	return nn.Shapes(params)
}

// CrossEntropy returns the softmax cross-entropy loss and its gradient.
func CrossEntropy(logits []float64, target int) (float64, []float64, error) {
	return nn.CrossEntropy(logits, target)
}

// Xavier returns a Glorot-uniform initialized tensor.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) (*tensor.Tensor, error) {
	return nn.Xavier(fanIn, fanOut, shape, rng)
}
