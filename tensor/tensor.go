// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float64 tensors exchanged between a
// gradient oracle and the trainer.
//
// # Basic Usage
//
//	import "github.com/born-ml/glimpse/tensor"
//
//	g, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	acc, _ := tensor.Zeros(tensor.Shape{2, 2})
//	_ = acc.Add(g)
//
// Tensors own their data. In-place operations return ErrShapeMismatch when
// shapes differ.
package tensor

import (
	"github.com/born-ml/glimpse/internal/tensor"
)

// Tensor is a dense row-major float64 tensor.
type Tensor = tensor.Tensor

// Shape is a tensor's dimensions.
type Shape = tensor.Shape

// Errors returned by tensor operations.
var (
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrDataLength    = tensor.ErrDataLength
)

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape) (*Tensor, error) {
	return tensor.Zeros(shape)
}

// ZerosLike creates a zero-filled tensor with the shape of t.
func ZerosLike(t *Tensor) *Tensor {
	return tensor.ZerosLike(t)
}

// FromSlice creates a tensor that takes ownership of data.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice(data []float64, shape Shape) *Tensor {
	return tensor.MustFromSlice(data, shape)
}

// MaxAbs returns the largest absolute value in v, or 0 when v is empty.
func MaxAbs(v []float64) float64 {
	return tensor.MaxAbs(v)
}
