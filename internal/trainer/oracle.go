package trainer

import "github.com/born-ml/glimpse/internal/tensor"

// Example is one training example: model inputs followed by the target
// vector, whose first component is the label.
type Example struct {
	Inputs  []*tensor.Tensor
	Targets []int
}

// Label returns the target label, or -1 when no targets are present.
func (e Example) Label() int {
	if len(e.Targets) == 0 {
		return -1
	}
	return e.Targets[0]
}

// Request tells the oracle which outputs the trainer will read.
type Request struct {
	// Gradients asks for supervised parameter gradients. When false the
	// oracle must leave Evaluation.Gradients empty.
	Gradients bool

	// PolicyGradient asks for the REINFORCE gradient of the policy weight.
	PolicyGradient bool
}

// Evaluation is the oracle's answer for one example.
type Evaluation struct {
	Cost           float64          // Scalar training cost
	PolicyGradient *tensor.Tensor   // Raw policy gradient, shape of the policy weight
	Positions      []float64        // Attention position diagnostic
	Decision       int              // Discrete decision output
	Gradients      []*tensor.Tensor // One per supervised parameter, in binding order
}

// Oracle evaluates the model on one example. It must be synchronous and must
// not modify the parameters it reports gradients for.
type Oracle interface {
	Evaluate(ex Example, req Request) (*Evaluation, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ex Example, req Request) (*Evaluation, error)

// Evaluate calls f(ex, req).
func (f OracleFunc) Evaluate(ex Example, req Request) (*Evaluation, error) {
	return f(ex, req)
}
