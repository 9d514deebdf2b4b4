// Package optim implements the parameter update rules used by the trainer.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - Adagrad: accumulated squared-gradient normalization with optional
//     gsum regularization and a per-gradient max-norm clamp
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// An optimizer is bound to an ordered list of parameters at construction.
// Step receives one averaged gradient per bound parameter, in the same order,
// and mutates the parameters in place.
//
// Example usage:
//
//	opt, err := optim.New(optim.FinetuningAdagrad, params, optim.Config{
//	    LR:                 0.01,
//	    GsumRegularization: 0.0001,
//	})
//
//	// After a batch of gradients has been accumulated and averaged:
//	if err := opt.Step(grads); err != nil {
//	    return err
//	}
package optim

import (
	"errors"
	"fmt"

	"github.com/born-ml/glimpse/internal/nn"
	"github.com/born-ml/glimpse/internal/tensor"
)

// Common errors.
var (
	ErrGradientCount = errors.New("gradient count does not match bound parameters")
	ErrUnknownMethod = errors.New("unknown optimization method")
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters based on averaged gradients.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies gradient updates to all bound parameters.
	//
	// grads must hold exactly one tensor per bound parameter, in binding
	// order, each with the parameter's shape. A nil entry skips that
	// parameter.
	Step(grads []*tensor.Tensor) error

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Method names an update rule.
type Method string

// Supported update rules.
const (
	FinetuningAdagrad Method = "finetuning_adagrad"
	MethodAdagrad     Method = "adagrad"
	MethodSGD         Method = "sgd"
	MethodAdam        Method = "adam"
)

// Config is the shared configuration accepted by New.
type Config struct {
	LR                 float64 // Learning rate
	GsumRegularization float64 // Adagrad: decay applied to the squared-gradient sum
	MaxNorm            float64 // Adagrad: per-gradient L2 clamp, 0 disables
	Momentum           float64 // SGD momentum
}

// New builds the optimizer selected by method over params.
func New(method Method, params []*nn.Parameter, cfg Config) (Optimizer, error) {
	switch method {
	case FinetuningAdagrad:
		return NewAdagrad(params, AdagradConfig{
			LR:                 cfg.LR,
			GsumRegularization: cfg.GsumRegularization,
			MaxNorm:            cfg.MaxNorm,
		}), nil
	case MethodAdagrad:
		return NewAdagrad(params, AdagradConfig{LR: cfg.LR, MaxNorm: cfg.MaxNorm}), nil
	case MethodSGD:
		return NewSGD(params, SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}), nil
	case MethodAdam:
		return NewAdam(params, AdamConfig{LR: cfg.LR}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// checkGradients validates grads against the bound parameters.
func checkGradients(params []*nn.Parameter, grads []*tensor.Tensor) error {
	if len(grads) != len(params) {
		return fmt.Errorf("%w: expected %d, got %d", ErrGradientCount, len(params), len(grads))
	}
	for i, g := range grads {
		if g == nil {
			continue
		}
		if !params[i].Shape().Equal(g.Shape()) {
			return fmt.Errorf("gradient for %q: %w: %v vs %v",
				params[i].Name(), tensor.ErrShapeMismatch, params[i].Shape(), g.Shape())
		}
	}
	return nil
}
