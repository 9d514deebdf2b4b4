// Package nn implements the small network building blocks used by the
// reference attention model.
//
// This package provides:
//   - Parameter: a named trainable tensor
//   - Linear: fully connected layer with an explicit backward pass
//   - Tanh: squashing activation for attention locations
//   - CrossEntropy: softmax cross-entropy loss and its gradient
//
// Layers compute gradients analytically and return them in parameter order,
// the form expected by the training loop's gradient oracle.
package nn

// Module is implemented by every component that owns trainable parameters.
type Module interface {
	// Parameters returns the trainable parameters in gradient order.
	Parameters() []*Parameter
}

// Parameters flattens the parameters of several modules, preserving order.
func Parameters(modules ...Module) []*Parameter {
	var out []*Parameter
	for _, m := range modules {
		out = append(out, m.Parameters()...)
	}
	return out
}
