package optim

import (
	"math"

	"github.com/born-ml/glimpse/internal/nn"
	"github.com/born-ml/glimpse/internal/tensor"
)

// Adagrad implements accumulated squared-gradient normalization.
//
// Update rule, per element:
//
//	g'    = g * min(1, maxNorm / ||g||)          // only when MaxNorm > 0
//	gsum  = gsum + g'² - reg * gsum
//	param = param - lr * g' / sqrt(gsum + eps)
//
// The clamp uses the L2 norm of the whole gradient tensor and preserves its
// direction. With GsumRegularization > 0 old squared gradients decay
// (FINETUNING_ADAGRAD).
//
// Example:
//
//	policyOpt := optim.NewAdagrad([]*nn.Parameter{wl}, optim.AdagradConfig{
//	    LR:                 0.01,
//	    MaxNorm:            0.8,
//	    GsumRegularization: 0.0001,
//	})
type Adagrad struct {
	params  []*nn.Parameter
	lr      float64
	reg     float64
	maxNorm float64
	eps     float64
	gsum    []*tensor.Tensor // Squared-gradient sums, allocated on first use
	steps   int
}

// AdagradConfig holds configuration for the Adagrad optimizer.
type AdagradConfig struct {
	LR                 float64 // Learning rate (default: 0.01)
	GsumRegularization float64 // Decay of the squared-gradient sum (default: 0)
	MaxNorm            float64 // L2 clamp applied to each gradient, 0 disables
	Eps                float64 // Term for numerical stability (default: 1e-6)
}

// NewAdagrad creates a new Adagrad optimizer bound to params.
func NewAdagrad(params []*nn.Parameter, config AdagradConfig) *Adagrad {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Eps == 0 {
		config.Eps = 1e-6
	}

	return &Adagrad{
		params:  params,
		lr:      config.LR,
		reg:     config.GsumRegularization,
		maxNorm: config.MaxNorm,
		eps:     config.Eps,
		gsum:    make([]*tensor.Tensor, len(params)),
	}
}

// Step performs a single optimization step.
func (a *Adagrad) Step(grads []*tensor.Tensor) error {
	if err := checkGradients(a.params, grads); err != nil {
		return err
	}
	a.steps++

	for i, param := range a.params {
		grad := grads[i]
		if grad == nil {
			continue
		}
		if a.gsum[i] == nil {
			a.gsum[i] = tensor.ZerosLike(param.Tensor())
		}
		a.updateParameter(param, grad, a.gsum[i])
	}
	return nil
}

func (a *Adagrad) updateParameter(param *nn.Parameter, grad, gsum *tensor.Tensor) {
	scale := 1.0
	if a.maxNorm > 0 {
		if norm := grad.Norm(); norm > a.maxNorm {
			scale = a.maxNorm / norm
		}
	}

	gradData := grad.Data()
	gsumData := gsum.Data()
	paramData := param.Tensor().Data()

	for i := range paramData {
		g := gradData[i] * scale
		gsumData[i] += g*g - a.reg*gsumData[i]
		paramData[i] -= a.lr * g / math.Sqrt(gsumData[i]+a.eps)
	}
}

// GetLR returns the current learning rate.
func (a *Adagrad) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adagrad) SetLR(lr float64) {
	a.lr = lr
}

// MaxNorm returns the gradient clamp, 0 when disabled.
func (a *Adagrad) MaxNorm() float64 {
	return a.maxNorm
}

// Steps returns the number of successful Step calls.
func (a *Adagrad) Steps() int {
	return a.steps
}
