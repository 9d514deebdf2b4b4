package optim

import (
	"github.com/born-ml/glimpse/internal/nn"
	"github.com/born-ml/glimpse/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities []*tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make([]*tensor.Tensor, len(params)),
	}
}

// Step performs a single optimization step.
//
// Parameters with a nil gradient are skipped.
func (s *SGD) Step(grads []*tensor.Tensor) error {
	if err := checkGradients(s.params, grads); err != nil {
		return err
	}

	for i, param := range s.params {
		grad := grads[i]
		if grad == nil {
			continue
		}

		if s.momentum == 0 {
			// param -= lr * grad
			if err := param.Tensor().AddScaled(-s.lr, grad); err != nil {
				return err
			}
			continue
		}

		velocity := s.velocities[i]
		if velocity == nil {
			velocity = tensor.ZerosLike(param.Tensor())
			s.velocities[i] = velocity
		}

		// velocity = momentum * velocity + grad
		velocity.Scale(s.momentum)
		if err := velocity.Add(grad); err != nil {
			return err
		}

		// param -= lr * velocity
		if err := param.Tensor().AddScaled(-s.lr, velocity); err != nil {
			return err
		}
	}
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
