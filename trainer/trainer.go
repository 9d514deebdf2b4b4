// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package trainer

import (
	"io"
	"log"

	"github.com/born-ml/glimpse/internal/attention"
	"github.com/born-ml/glimpse/internal/trainer"
)

// Trainer drives attention training one epoch at a time.
type Trainer = trainer.Trainer

// Config holds the learning rate, batch size, update rule and mode flags.
type Config = trainer.Config

// Params are the parameters the trainer updates.
type Params = trainer.Params

// EpochResult summarizes one non-degenerate epoch.
type EpochResult = trainer.EpochResult

// Oracle is the model-side gradient source.
type Oracle = trainer.Oracle

// OracleFunc adapts a function to Oracle.
type OracleFunc = trainer.OracleFunc

// Example is one labeled training input.
type Example = trainer.Example

// Request tells the oracle which gradients are needed.
type Request = trainer.Request

// Evaluation is the oracle's report for one example.
type Evaluation = trainer.Evaluation

// BatchAccumulator owns the per-batch gradient sums.
type BatchAccumulator = trainer.BatchAccumulator

// Binding ties an updater to its parameter shapes.
type Binding = trainer.Binding

// Monitor receives training events.
type Monitor = trainer.Monitor

// MonitorFunc adapts a function to Monitor.
type MonitorFunc = trainer.MonitorFunc

// Event is one training event.
type Event = trainer.Event

// EventKind identifies an event.
type EventKind = trainer.EventKind

// Event kinds.
const (
	EventSkip               = trainer.EventSkip
	EventBaselineSet        = trainer.EventBaselineSet
	EventFlush              = trainer.EventFlush
	EventZeroPolicyGradient = trainer.EventZeroPolicyGradient
	EventCovarianceSwitch   = trainer.EventCovarianceSwitch
	EventHeartbeat          = trainer.EventHeartbeat
	EventEpochEnd           = trainer.EventEpochEnd
)

// Training constants.
const (
	CostCeiling    = trainer.CostCeiling
	HeartbeatEvery = trainer.HeartbeatEvery
)

// Errors returned by the trainer.
var (
	ErrCostOverflow   = trainer.ErrCostOverflow
	ErrNoOracle       = trainer.ErrNoOracle
	ErrNoPolicy       = trainer.ErrNoPolicy
	ErrGradientCount  = trainer.ErrGradientCount
	ErrPolicyGradient = trainer.ErrPolicyGradient
)

// Discard drops every event.
var Discard = trainer.Discard

// New builds a trainer with one updater over params.Supervised and one
// max-norm clamped updater over params.Policy.
func New(oracle Oracle, params Params, cov *attention.Controller, cfg Config) (*Trainer, error) {
	return trainer.New(oracle, params, cov, cfg)
}

// NewWithAccumulator builds a trainer around an existing accumulator.
func NewWithAccumulator(oracle Oracle, acc *BatchAccumulator, cov *attention.Controller, cfg Config) (*Trainer, error) {
	return trainer.NewWithAccumulator(oracle, acc, cov, cfg)
}

// NewBatchAccumulator allocates zeroed accumulators for the given bindings.
func NewBatchAccumulator(supervised, policy *Binding) (*BatchAccumulator, error) {
	return trainer.NewBatchAccumulator(supervised, policy)
}

// DefaultConfig returns the default training configuration.
func DefaultConfig() Config {
	return trainer.DefaultConfig()
}

// NewLogMonitor returns a monitor writing one line per event to l.
func NewLogMonitor(l *log.Logger) Monitor {
	return trainer.NewLogMonitor(l)
}

// NewProgress returns a monitor writing terse progress markers to w.
func NewProgress(w io.Writer) Monitor {
	return trainer.NewProgress(w)
}

// Multi fans events out to several monitors in order.
func Multi(monitors ...Monitor) Monitor {
	return trainer.Multi(monitors...)
}
