package trainer

import (
	"fmt"

	"github.com/born-ml/glimpse/internal/optim"
	"github.com/born-ml/glimpse/internal/tensor"
)

// Binding ties an updater to the shapes of the parameters it was built over.
type Binding struct {
	Updater optim.Optimizer
	Shapes  []tensor.Shape
}

// FlushResult reports what a flush did.
type FlushResult struct {
	SupervisedUpdated  bool
	PolicyUpdated      bool
	ZeroPolicyGradient bool // Policy update was requested but the accumulated gradient was all zero
}

// BatchAccumulator owns the running gradient sums for one mini-batch.
//
// Each accumulator has exactly the shape of its parameter, is created once,
// and is zero after every Flush whether or not an update ran.
type BatchAccumulator struct {
	supervised    optim.Optimizer
	grads         []*tensor.Tensor
	policyUpdater optim.Optimizer
	policy        *tensor.Tensor
}

// NewBatchAccumulator allocates zeroed accumulators. A nil binding disables
// that half: supervised nil for backprop-disabled training, policy nil for
// reinforce-disabled training. The policy binding must have exactly one
// shape.
func NewBatchAccumulator(supervised, policy *Binding) (*BatchAccumulator, error) {
	a := &BatchAccumulator{}

	if supervised != nil {
		if supervised.Updater == nil {
			return nil, fmt.Errorf("supervised binding has no updater")
		}
		a.supervised = supervised.Updater
		a.grads = make([]*tensor.Tensor, len(supervised.Shapes))
		for i, shape := range supervised.Shapes {
			g, err := tensor.Zeros(shape)
			if err != nil {
				return nil, fmt.Errorf("supervised accumulator %d: %w", i, err)
			}
			a.grads[i] = g
		}
	}

	if policy != nil {
		if policy.Updater == nil {
			return nil, fmt.Errorf("policy binding has no updater")
		}
		if len(policy.Shapes) != 1 {
			return nil, fmt.Errorf("policy binding needs exactly one shape, got %d", len(policy.Shapes))
		}
		g, err := tensor.Zeros(policy.Shapes[0])
		if err != nil {
			return nil, fmt.Errorf("policy accumulator: %w", err)
		}
		a.policyUpdater = policy.Updater
		a.policy = g
	}

	return a, nil
}

// Backprop reports whether supervised accumulation is enabled.
func (a *BatchAccumulator) Backprop() bool { return a.supervised != nil }

// Reinforce reports whether policy accumulation is enabled.
func (a *BatchAccumulator) Reinforce() bool { return a.policyUpdater != nil }

// Add sums raw per-example gradients into the supervised accumulators. It is
// a no-op when backprop is disabled. On error no accumulator is modified.
func (a *BatchAccumulator) Add(grads []*tensor.Tensor) error {
	if !a.Backprop() {
		return nil
	}
	if len(grads) != len(a.grads) {
		return fmt.Errorf("%w: expected %d, got %d", ErrGradientCount, len(a.grads), len(grads))
	}
	for i, g := range grads {
		if !a.grads[i].SameShape(g) {
			return fmt.Errorf("gradient %d: %w", i, tensor.ErrShapeMismatch)
		}
	}
	for i, g := range grads {
		if err := a.grads[i].Add(g); err != nil {
			return fmt.Errorf("gradient %d: %w", i, err)
		}
	}
	return nil
}

// AddPolicy adds weight * grad into the policy accumulator. It is a no-op
// when reinforce is disabled.
func (a *BatchAccumulator) AddPolicy(weight float64, grad *tensor.Tensor) error {
	if !a.Reinforce() {
		return nil
	}
	if err := a.policy.AddScaled(weight, grad); err != nil {
		return fmt.Errorf("policy gradient: %w", err)
	}
	return nil
}

// Flush averages every accumulator over batchSize, hands the means to the
// updaters and zeroes all accumulators. The policy updater runs only when
// updatePolicy is true, reinforce is enabled and the policy accumulator is
// not all zero.
func (a *BatchAccumulator) Flush(batchSize int, updatePolicy bool) (FlushResult, error) {
	defer a.Zero()

	var res FlushResult
	if batchSize < 1 {
		return res, fmt.Errorf("flush with batch size %d", batchSize)
	}
	inv := 1 / float64(batchSize)

	if a.Backprop() {
		means := make([]*tensor.Tensor, len(a.grads))
		for i, g := range a.grads {
			means[i] = g.Clone()
			means[i].Scale(inv)
		}
		if err := a.supervised.Step(means); err != nil {
			return res, fmt.Errorf("supervised update: %w", err)
		}
		res.SupervisedUpdated = true
	}

	if updatePolicy && a.Reinforce() {
		if a.policy.IsZero() {
			res.ZeroPolicyGradient = true
			return res, nil
		}
		mean := a.policy.Clone()
		mean.Scale(inv)
		if err := a.policyUpdater.Step([]*tensor.Tensor{mean}); err != nil {
			return res, fmt.Errorf("policy update: %w", err)
		}
		res.PolicyUpdated = true
	}

	return res, nil
}

// Zero clears every accumulator.
func (a *BatchAccumulator) Zero() {
	for _, g := range a.grads {
		g.Zero()
	}
	if a.policy != nil {
		a.policy.Zero()
	}
}

// IsZero reports whether every accumulator is zero.
func (a *BatchAccumulator) IsZero() bool {
	for _, g := range a.grads {
		if !g.IsZero() {
			return false
		}
	}
	return a.policy == nil || a.policy.IsZero()
}

// Gradients returns the supervised accumulators. The slice is live.
func (a *BatchAccumulator) Gradients() []*tensor.Tensor {
	return a.grads
}

// Policy returns the policy accumulator, nil when reinforce is disabled.
func (a *BatchAccumulator) Policy() *tensor.Tensor {
	return a.policy
}
