// Package glimpse provides a reference gradient oracle for the trainer: a
// single-glimpse attention classifier over synthetic one-dimensional signals.
//
// The model looks at a coarse summary of the signal, picks a location mean
// with a tanh-squashed linear policy, samples the glimpse position from an
// attention.Gaussian and classifies the cells around that position with a
// linear layer. Supervised gradients are computed by backprop through the
// classifier. The policy gradient is the score of the sampled position,
// ∇_W log N(p; tanh(W c), Σ).
package glimpse

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/glimpse/internal/attention"
	"github.com/born-ml/glimpse/internal/nn"
	"github.com/born-ml/glimpse/internal/tensor"
	"github.com/born-ml/glimpse/internal/trainer"
	"gonum.org/v1/gonum/floats"
)

// MaxCenter bounds pattern centers in position space, inside the saturation
// limit so a well placed glimpse can earn a reward.
const MaxCenter = 0.7

var (
	// ErrInput is returned for examples that do not match the model.
	ErrInput = errors.New("glimpse: malformed example")

	// ErrDimension is returned when the position policy is not one-dimensional.
	ErrDimension = errors.New("glimpse: position policy must be one-dimensional")
)

// Config describes the synthetic task and model sizes.
type Config struct {
	Length  int     // Signal length (default: 32)
	Window  int     // Cells read by one glimpse (default: 5)
	Bins    int     // Coarse context bins seen by the policy (default: 4)
	Classes int     // Number of classes (default: 2)
	Noise   float64 // Signal noise standard deviation (default: 0.05)
}

// DefaultConfig returns the default task configuration.
func DefaultConfig() Config {
	return Config{Length: 32, Window: 5, Bins: 4, Classes: 2, Noise: 0.05}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Length == 0 {
		c.Length = d.Length
	}
	if c.Window == 0 {
		c.Window = d.Window
	}
	if c.Bins == 0 {
		c.Bins = d.Bins
	}
	if c.Classes == 0 {
		c.Classes = d.Classes
	}
	if c.Noise == 0 {
		c.Noise = d.Noise
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Length < 2 || c.Window < 1 || c.Window > c.Length {
		return fmt.Errorf("glimpse: invalid length %d / window %d", c.Length, c.Window)
	}
	if c.Bins < 1 || c.Bins > c.Length {
		return fmt.Errorf("glimpse: invalid bin count %d", c.Bins)
	}
	if c.Classes < 2 {
		return fmt.Errorf("glimpse: need at least 2 classes, got %d", c.Classes)
	}
	return nil
}

// index maps a position in [-1, 1] to the nearest signal cell.
func (c Config) index(pos float64) int {
	return int(math.Round((pos + 1) / 2 * float64(c.Length-1)))
}

// Model is a single-glimpse attention classifier. It implements
// trainer.Oracle.
//
// Model is not safe for concurrent use: evaluation draws from one random
// source.
type Model struct {
	cfg        Config
	classifier *nn.Linear
	policy     *nn.Parameter // [1, Bins+1]
	gauss      *attention.Gaussian
	rng        *rand.Rand
}

// New creates a model sampling positions from gauss, which must be
// one-dimensional. The same Gaussian is typically driven by an
// attention.Controller during training.
func New(cfg Config, gauss *attention.Gaussian, rng *rand.Rand) (*Model, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gauss == nil || gauss.Dim() != 1 {
		return nil, ErrDimension
	}

	classifier, err := nn.NewLinear(cfg.Window, cfg.Classes, rng)
	if err != nil {
		return nil, err
	}
	w, err := nn.Uniform(0.01, tensor.Shape{1, cfg.Bins + 1}, rng)
	if err != nil {
		return nil, err
	}

	return &Model{
		cfg:        cfg,
		classifier: classifier,
		policy:     nn.NewParameter("location.weight", w),
		gauss:      gauss,
		rng:        rng,
	}, nil
}

// Config returns the effective configuration.
func (m *Model) Config() Config { return m.cfg }

// Parameters returns the supervised parameters in gradient order.
func (m *Model) Parameters() []*nn.Parameter { return m.classifier.Parameters() }

// PolicyWeight returns the location policy weight.
func (m *Model) PolicyWeight() *nn.Parameter { return m.policy }

// Context returns the coarse summary the policy sees: the mean absolute
// value of each of cfg.Bins equal slices of the signal, followed by a
// constant 1 bias input.
func (m *Model) Context(signal []float64) []float64 {
	ctx := make([]float64, m.cfg.Bins+1)
	for b := range m.cfg.Bins {
		lo := b * m.cfg.Length / m.cfg.Bins
		hi := (b + 1) * m.cfg.Length / m.cfg.Bins
		for _, v := range signal[lo:hi] {
			ctx[b] += math.Abs(v)
		}
		ctx[b] /= float64(hi - lo)
	}
	ctx[m.cfg.Bins] = 1
	return ctx
}

// Location returns the policy mean tanh(W c) for a context.
func (m *Model) Location(ctx []float64) float64 {
	return math.Tanh(floats.Dot(m.policy.Tensor().Data(), ctx))
}

// Read returns the cfg.Window cells centered on pos. Cells outside the
// signal read as 0.
func (m *Model) Read(signal []float64, pos float64) []float64 {
	out := make([]float64, m.cfg.Window)
	start := m.cfg.index(pos) - m.cfg.Window/2
	for k := range out {
		if j := start + k; j >= 0 && j < len(signal) {
			out[k] = signal[j]
		}
	}
	return out
}

func (m *Model) signal(ex trainer.Example) ([]float64, int, error) {
	if len(ex.Inputs) != 1 || ex.Inputs[0] == nil || ex.Inputs[0].NumElements() != m.cfg.Length {
		return nil, 0, fmt.Errorf("%w: expected one input of length %d", ErrInput, m.cfg.Length)
	}
	label := ex.Label()
	if label < 0 || label >= m.cfg.Classes {
		return nil, 0, fmt.Errorf("%w: label %d out of range", ErrInput, label)
	}
	return ex.Inputs[0].Data(), label, nil
}

// Evaluate runs one stochastic glimpse and returns the cost, the position,
// the decision and the gradients asked for by req.
func (m *Model) Evaluate(ex trainer.Example, req trainer.Request) (*trainer.Evaluation, error) {
	x, label, err := m.signal(ex)
	if err != nil {
		return nil, err
	}

	ctx := m.Context(x)
	mu := m.Location(ctx)
	pos := m.gauss.Sample([]float64{mu}, m.rng)

	glimpse := m.Read(x, pos[0])
	logits, err := m.classifier.Forward(glimpse)
	if err != nil {
		return nil, err
	}
	cost, dlogits, err := nn.CrossEntropy(logits, label)
	if err != nil {
		return nil, err
	}

	ev := &trainer.Evaluation{
		Cost:      cost,
		Positions: pos,
		Decision:  nn.Argmax(logits),
	}

	if req.Gradients {
		gradW, gradB, _, err := m.classifier.Backward(glimpse, dlogits)
		if err != nil {
			return nil, err
		}
		ev.Gradients = []*tensor.Tensor{gradW, gradB}
	}

	if req.PolicyGradient {
		// ∂ log π / ∂W = Σ⁻¹(p - μ) (1 - μ²) c
		score := m.gauss.Score(pos, []float64{mu})
		dz := nn.TanhBackward([]float64{mu}, score)
		grad := make([]float64, len(ctx))
		floats.ScaleTo(grad, dz[0], ctx)
		ev.PolicyGradient = tensor.MustFromSlice(grad, m.policy.Shape())
	}

	return ev, nil
}

// Predict classifies an example with a deterministic glimpse at the policy
// mean.
func (m *Model) Predict(ex trainer.Example) (int, error) {
	x, _, err := m.signal(ex)
	if err != nil {
		return 0, err
	}
	logits, err := m.classifier.Forward(m.Read(x, m.Location(m.Context(x))))
	if err != nil {
		return 0, err
	}
	return nn.Argmax(logits), nil
}

// Accuracy returns the fraction of examples Predict classifies correctly.
func (m *Model) Accuracy(data Dataset) (float64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	correct := 0
	for _, ex := range data {
		pred, err := m.Predict(ex)
		if err != nil {
			return 0, err
		}
		if pred == ex.Label() {
			correct++
		}
	}
	return float64(correct) / float64(len(data)), nil
}
