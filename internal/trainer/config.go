package trainer

import (
	"errors"
	"fmt"

	"github.com/born-ml/glimpse/internal/optim"
)

// Fixed training policy.
const (
	// CostCeiling discards examples whose cost exceeds it.
	CostCeiling = 10.0

	// HeartbeatEvery emits a heartbeat at a flush once the accepted example
	// count is a multiple of it.
	HeartbeatEvery = 1000
)

// Common errors.
var (
	// ErrCostOverflow reports an epoch in which every example was discarded.
	// Callers must check for it before reading any statistics.
	ErrCostOverflow = errors.New("cost overflow: no examples accepted")

	ErrNoOracle       = errors.New("oracle is required")
	ErrNoPolicy       = errors.New("policy parameter and covariance controller are required unless reinforce is disabled")
	ErrGradientCount  = errors.New("oracle returned wrong number of gradients")
	ErrPolicyGradient = errors.New("oracle returned no policy gradient")
)

// Config holds trainer configuration. Zero fields take defaults.
type Config struct {
	LearningRate       float64      // Learning rate for both updaters (default: 0.01)
	BatchSize          int          // Accepted examples per update (default: 20)
	Method             optim.Method // Update rule (default: finetuning_adagrad)
	GsumRegularization float64      // Adagrad gsum decay (default: 0.0001)
	PolicyMaxNorm      float64      // L2 clamp on the policy gradient (default: 0.8)

	// DisableBackprop turns off supervised gradients. The oracle is never
	// asked for them and the supervised updater never runs.
	DisableBackprop bool

	// DisableReinforce turns off the policy gradient, the policy updater and
	// covariance switching.
	DisableReinforce bool
}

// DefaultConfig returns the defaults used for attention training.
func DefaultConfig() Config {
	return Config{
		LearningRate:       0.01,
		BatchSize:          20,
		Method:             optim.FinetuningAdagrad,
		GsumRegularization: 0.0001,
		PolicyMaxNorm:      0.8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LearningRate == 0 {
		c.LearningRate = d.LearningRate
	}
	if c.BatchSize == 0 {
		c.BatchSize = d.BatchSize
	}
	if c.Method == "" {
		c.Method = d.Method
	}
	if c.GsumRegularization == 0 {
		c.GsumRegularization = d.GsumRegularization
	}
	if c.PolicyMaxNorm == 0 {
		c.PolicyMaxNorm = d.PolicyMaxNorm
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.LearningRate < 0 {
		return fmt.Errorf("learning rate must be non-negative, got %g", c.LearningRate)
	}
	return nil
}
