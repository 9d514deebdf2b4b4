package nn

import (
	"github.com/born-ml/glimpse/internal/tensor"
)

// Parameter represents a trainable parameter owned by a network.
//
// The trainer never owns parameters. It reads their shapes to size the
// gradient accumulators and hands them to optimizers, which mutate the
// underlying tensor in place.
//
// Example:
//
//	w, _ := tensor.Zeros(tensor.Shape{10, 4})
//	weight := nn.NewParameter("classifier.weight", w)
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor // The parameter tensor
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Shape returns the parameter tensor's shape.
func (p *Parameter) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// Shapes returns the shapes of params in order.
func Shapes(params []*Parameter) []tensor.Shape {
	shapes := make([]tensor.Shape, len(params))
	for i, p := range params {
		shapes[i] = p.Shape()
	}
	return shapes
}
