// Package tensor provides the dense float64 tensors that carry parameters and
// gradients through the trainer.
//
// Element-wise arithmetic is delegated to gonum/floats. In-place operations
// check shapes and return ErrShapeMismatch instead of panicking.
package tensor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Common errors.
var (
	ErrShapeMismatch = errors.New("tensor shape mismatch")
	ErrDataLength    = errors.New("data length does not match shape")
)

// Tensor is a dense row-major float64 tensor.
type Tensor struct {
	shape Shape
	data  []float64
}

// Zeros creates a zero-filled tensor with the given shape.
func Zeros(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}, nil
}

// ZerosLike creates a zero-filled tensor with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return &Tensor{
		shape: t.shape.Clone(),
		data:  make([]float64, len(t.data)),
	}
}

// FromSlice creates a tensor that takes ownership of data.
//
// Example:
//
//	w, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("%w: got %d elements for shape %v", ErrDataLength, len(data), shape)
	}
	return &Tensor{shape: shape.Clone(), data: data}, nil
}

// MustFromSlice is FromSlice that panics on error. Intended for tests and
// fixed-size literals.
func MustFromSlice(data []float64, shape Shape) *Tensor {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying storage.
// WARNING: Direct access to underlying memory. Writes are visible to every holder.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), data: data}
}

// SameShape reports whether t and other have identical shapes.
func (t *Tensor) SameShape(other *Tensor) bool {
	return other != nil && t.shape.Equal(other.shape)
}

func (t *Tensor) checkShape(other *Tensor) error {
	if other == nil {
		return fmt.Errorf("%w: nil operand for shape %v", ErrShapeMismatch, t.shape)
	}
	if !t.shape.Equal(other.shape) {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, t.shape, other.shape)
	}
	return nil
}

// Add performs t += other in place.
func (t *Tensor) Add(other *Tensor) error {
	if err := t.checkShape(other); err != nil {
		return err
	}
	floats.Add(t.data, other.data)
	return nil
}

// AddScaled performs t += alpha * other in place.
func (t *Tensor) AddScaled(alpha float64, other *Tensor) error {
	if err := t.checkShape(other); err != nil {
		return err
	}
	floats.AddScaled(t.data, alpha, other.data)
	return nil
}

// CopyFrom overwrites t with the contents of other.
func (t *Tensor) CopyFrom(other *Tensor) error {
	if err := t.checkShape(other); err != nil {
		return err
	}
	copy(t.data, other.data)
	return nil
}

// Scale multiplies every element by alpha in place.
func (t *Tensor) Scale(alpha float64) {
	floats.Scale(alpha, t.data)
}

// Zero sets every element to 0.
func (t *Tensor) Zero() {
	clear(t.data)
}

// IsZero reports whether every element is exactly 0.
func (t *Tensor) IsZero() bool {
	for _, v := range t.data {
		if v != 0 {
			return false
		}
	}
	return true
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float64 {
	return floats.Sum(t.data)
}

// Norm returns the L2 norm of the flattened tensor.
func (t *Tensor) Norm() float64 {
	return floats.Norm(t.data, 2)
}

// MaxAbs returns the largest absolute value, or 0 for an empty tensor.
func (t *Tensor) MaxAbs() float64 {
	return MaxAbs(t.data)
}

// MaxAbs returns the largest absolute value in v, or 0 when v is empty.
func MaxAbs(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, math.Inf(1))
}

// IsFinite reports whether every element is neither NaN nor infinite.
func (t *Tensor) IsFinite() bool {
	for _, v := range t.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
