// Package trainer implements the hybrid REINFORCE and backprop training loop
// for a stochastic attention model.
//
// Each accepted example contributes a raw supervised gradient and a
// reward-weighted policy gradient to a BatchAccumulator. Every BatchSize
// accepted examples the accumulators are averaged, applied through the
// configured updaters and cleared. The covariance controller is then driven
// with that batch's mean reward.
//
// Example usage:
//
//	t, err := trainer.New(model, trainer.Params{
//	    Supervised: model.Parameters(),
//	    Policy:     model.PolicyWeight(),
//	}, ctrl, trainer.DefaultConfig())
//
//	for epoch := range epochs {
//	    res, err := t.TrainEpoch(slices.Values(data))
//	    if errors.Is(err, trainer.ErrCostOverflow) {
//	        continue
//	    }
//	    fmt.Println(res)
//	}
package trainer

import (
	"fmt"
	"iter"
	"math"
	"os"

	"github.com/born-ml/glimpse/internal/attention"
	"github.com/born-ml/glimpse/internal/nn"
	"github.com/born-ml/glimpse/internal/optim"
	"github.com/born-ml/glimpse/internal/reinforce"
	"github.com/born-ml/glimpse/internal/tensor"
)

// Params are the parameters the trainer updates. It holds no ownership.
type Params struct {
	Supervised []*nn.Parameter // Weights and biases, in oracle gradient order
	Policy     *nn.Parameter   // Attention policy weight
}

// EpochResult summarizes one non-degenerate epoch.
type EpochResult struct {
	Epoch        int     // 1-based epoch number
	Accepted     int     // Examples that passed the cost check
	Skipped      int     // Examples discarded
	Batches      int     // Flushes performed
	MeanCost     float64 // Total accepted cost / Accepted
	MeanReward   float64 // Total reward / Accepted, also the new baseline
	MeanPosition float64 // Mean of per-example max |position|
}

// String formats the summary line.
func (r EpochResult) String() string {
	return fmt.Sprintf("J: %.2f, Avg R: %.4f, Avg P: %.2f", r.MeanCost, r.MeanReward, r.MeanPosition)
}

// Trainer drives attention training one epoch at a time.
//
// Trainer is not safe for concurrent use. Examples are processed strictly in
// order and each one completes, including any flush, before the next is
// evaluated. A concurrent variant would need one critical section covering
// the accumulators, the updaters and the covariance controller, because a
// flush zeroes the accumulators immediately after reading them.
type Trainer struct {
	cfg     Config
	oracle  Oracle
	acc     *BatchAccumulator
	rewards *reinforce.Tracker
	cov     *attention.Controller
	monitor Monitor
	epoch   int
}

// New builds a trainer, creating one updater over params.Supervised and one
// max-norm clamped updater over params.Policy. cov may be nil only when
// reinforce is disabled.
func New(oracle Oracle, params Params, cov *attention.Controller, cfg Config) (*Trainer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var supervised, policy *Binding
	if !cfg.DisableBackprop {
		opt, err := optim.New(cfg.Method, params.Supervised, optim.Config{
			LR:                 cfg.LearningRate,
			GsumRegularization: cfg.GsumRegularization,
		})
		if err != nil {
			return nil, err
		}
		supervised = &Binding{Updater: opt, Shapes: nn.Shapes(params.Supervised)}
	}
	if !cfg.DisableReinforce {
		if params.Policy == nil || cov == nil {
			return nil, ErrNoPolicy
		}
		opt, err := optim.New(cfg.Method, []*nn.Parameter{params.Policy}, optim.Config{
			LR:                 cfg.LearningRate,
			GsumRegularization: cfg.GsumRegularization,
			MaxNorm:            cfg.PolicyMaxNorm,
		})
		if err != nil {
			return nil, err
		}
		policy = &Binding{Updater: opt, Shapes: []tensor.Shape{params.Policy.Shape()}}
	}

	acc, err := NewBatchAccumulator(supervised, policy)
	if err != nil {
		return nil, err
	}
	return NewWithAccumulator(oracle, acc, cov, cfg)
}

// NewWithAccumulator builds a trainer around an existing accumulator. The
// accumulator's bindings decide whether backprop and reinforce run; the
// mode flags in cfg are ignored.
func NewWithAccumulator(oracle Oracle, acc *BatchAccumulator, cov *attention.Controller, cfg Config) (*Trainer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if oracle == nil {
		return nil, ErrNoOracle
	}
	if acc.Reinforce() && cov == nil {
		return nil, ErrNoPolicy
	}
	cfg.DisableBackprop = !acc.Backprop()
	cfg.DisableReinforce = !acc.Reinforce()

	return &Trainer{
		cfg:     cfg,
		oracle:  oracle,
		acc:     acc,
		rewards: reinforce.NewTracker(),
		cov:     cov,
		monitor: NewProgress(os.Stdout),
	}, nil
}

// SetMonitor replaces the event monitor. nil discards events.
func (t *Trainer) SetMonitor(m Monitor) {
	if m == nil {
		m = Discard
	}
	t.monitor = m
}

// Config returns the effective configuration.
func (t *Trainer) Config() Config { return t.cfg }

// Epoch returns the number of completed non-degenerate epochs.
func (t *Trainer) Epoch() int { return t.epoch }

// Baseline returns the current reward baseline.
func (t *Trainer) Baseline() reinforce.Baseline { return t.rewards.Baseline() }

// SetBaseline overrides the reward baseline, for example when resuming.
func (t *Trainer) SetBaseline(v float64) { t.rewards.SetBaseline(v) }

// Accumulator returns the batch accumulator.
func (t *Trainer) Accumulator() *BatchAccumulator { return t.acc }

// CovarianceMode returns the active covariance mode, Small when reinforce is
// disabled.
func (t *Trainer) CovarianceMode() attention.Mode {
	if t.cov == nil {
		return attention.Small
	}
	return t.cov.Mode()
}

// epochState holds the per-batch and per-epoch counters.
type epochState struct {
	epoch int

	batchCount  int
	batchCost   float64
	batchReward float64

	accepted      int
	skipped       int
	batches       int
	totalCost     float64
	totalPosition float64
}

// accept reports whether a cost is usable.
func accept(cost float64) bool {
	return !math.IsNaN(cost) && !math.IsInf(cost, 0) && cost <= CostCeiling
}

// TrainEpoch consumes data once and returns the epoch summary.
//
// It returns ErrCostOverflow when no example was accepted. Oracle, updater
// and covariance failures abort the epoch with a wrapped error. A trailing
// partial batch is not flushed; its gradients stay accumulated and join the
// first batch of the next epoch.
func (t *Trainer) TrainEpoch(data iter.Seq[Example]) (*EpochResult, error) {
	s := &epochState{epoch: t.epoch + 1}
	t.rewards.ResetEpoch()
	if t.cov != nil {
		t.cov.Reset()
	}

	req := Request{Gradients: t.acc.Backprop(), PolicyGradient: t.acc.Reinforce()}
	for ex := range data {
		ev, err := t.oracle.Evaluate(ex, req)
		if err != nil {
			return nil, fmt.Errorf("epoch %d, example %d: %w", s.epoch, s.accepted+s.skipped, err)
		}
		if !accept(ev.Cost) {
			s.skipped++
			t.emit(s, Event{Kind: EventSkip, Cost: ev.Cost})
			continue
		}
		if err := t.step(s, ex, ev); err != nil {
			return nil, fmt.Errorf("epoch %d, example %d: %w", s.epoch, s.accepted+s.skipped, err)
		}
	}

	if s.accepted == 0 {
		t.emit(s, Event{Kind: EventEpochEnd})
		return nil, ErrCostOverflow
	}

	meanReward, _ := t.rewards.FinalizeEpoch()
	t.epoch = s.epoch
	res := &EpochResult{
		Epoch:        s.epoch,
		Accepted:     s.accepted,
		Skipped:      s.skipped,
		Batches:      s.batches,
		MeanCost:     s.totalCost / float64(s.accepted),
		MeanReward:   meanReward,
		MeanPosition: s.totalPosition / float64(s.accepted),
	}
	t.emit(s, Event{Kind: EventEpochEnd, Result: res})
	return res, nil
}

// step processes one accepted example.
func (t *Trainer) step(s *epochState, ex Example, ev *Evaluation) error {
	if err := t.check(ev); err != nil {
		return err
	}

	reward := reinforce.Reward(ev.Decision, ex.Label(), ev.Positions)
	if t.rewards.Observe(reward) {
		b, _ := t.rewards.Baseline().Value()
		t.emit(s, Event{Kind: EventBaselineSet, Baseline: b})
	}

	// Before warm-up there is no baseline to center on, so the policy
	// gradient is not accumulated at all.
	if w, ok := t.rewards.Weight(reward); ok {
		if err := t.acc.AddPolicy(w, ev.PolicyGradient); err != nil {
			return err
		}
	}
	if err := t.acc.Add(ev.Gradients); err != nil {
		return err
	}

	s.batchCost += ev.Cost
	s.batchReward += reward
	s.totalCost += ev.Cost
	s.totalPosition += tensor.MaxAbs(ev.Positions)
	s.batchCount++
	s.accepted++

	if s.batchCount >= t.cfg.BatchSize {
		return t.flush(s)
	}
	return nil
}

// check validates oracle output before anything is mutated.
func (t *Trainer) check(ev *Evaluation) error {
	if t.acc.Backprop() {
		acc := t.acc.Gradients()
		if len(ev.Gradients) != len(acc) {
			return fmt.Errorf("%w: expected %d, got %d", ErrGradientCount, len(acc), len(ev.Gradients))
		}
		for i, g := range ev.Gradients {
			if !acc[i].SameShape(g) {
				return fmt.Errorf("gradient %d: %w: expected %v", i, tensor.ErrShapeMismatch, acc[i].Shape())
			}
		}
	}
	if t.acc.Reinforce() {
		if ev.PolicyGradient == nil {
			return ErrPolicyGradient
		}
		if !t.acc.Policy().SameShape(ev.PolicyGradient) {
			return fmt.Errorf("policy gradient: %w: %v vs %v",
				tensor.ErrShapeMismatch, t.acc.Policy().Shape(), ev.PolicyGradient.Shape())
		}
	}
	return nil
}

// flush applies the batch and drives the covariance controller.
func (t *Trainer) flush(s *epochState) error {
	// First-batch guard: the counter never reports a full first batch.
	if s.accepted == s.batchCount {
		s.batchCount--
	}

	res, err := t.acc.Flush(t.cfg.BatchSize, t.rewards.Baseline().Valid())
	if err != nil {
		return err
	}
	s.batches++
	t.emit(s, Event{Kind: EventFlush, Batch: s.batchCount, Cost: s.batchCost, Reward: s.batchReward})
	if res.ZeroPolicyGradient {
		t.emit(s, Event{Kind: EventZeroPolicyGradient})
	}

	if s.accepted%HeartbeatEvery == 0 {
		t.emit(s, Event{Kind: EventHeartbeat})
	}

	if t.acc.Reinforce() {
		sw, err := t.cov.Step(s.batchReward / float64(t.cfg.BatchSize))
		if err != nil {
			return err
		}
		if sw != nil {
			t.emit(s, Event{Kind: EventCovarianceSwitch, Mode: sw.To})
		}
	}

	s.batchCount = 0
	s.batchCost = 0
	s.batchReward = 0
	return nil
}

func (t *Trainer) emit(s *epochState, ev Event) {
	ev.Epoch = s.epoch
	ev.Accepted = s.accepted
	t.monitor.Observe(ev)
}
