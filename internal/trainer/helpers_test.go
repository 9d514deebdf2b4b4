package trainer

import (
	"iter"
	"slices"
	"testing"

	"github.com/born-ml/glimpse/internal/attention"
	"github.com/born-ml/glimpse/internal/tensor"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// recordingOptimizer copies every gradient it is stepped with.
type recordingOptimizer struct {
	steps [][][]float64
	err   error
}

func (r *recordingOptimizer) Step(grads []*tensor.Tensor) error {
	if r.err != nil {
		return r.err
	}
	step := make([][]float64, len(grads))
	for i, g := range grads {
		step[i] = slices.Clone(g.Data())
	}
	r.steps = append(r.steps, step)
	return nil
}

func (r *recordingOptimizer) GetLR() float64 { return 0 }

// scriptedOracle replays evaluations in order, cycling when exhausted.
type scriptedOracle struct {
	evals []*Evaluation
	calls int
	reqs  []Request
}

func (s *scriptedOracle) Evaluate(_ Example, req Request) (*Evaluation, error) {
	s.reqs = append(s.reqs, req)
	ev := s.evals[s.calls%len(s.evals)]
	s.calls++
	return ev, nil
}

func vec(v ...float64) *tensor.Tensor {
	return tensor.MustFromSlice(v, tensor.Shape{len(v)})
}

// eval builds an accepted evaluation with one 2-element supervised gradient.
func eval(cost float64, decision int, position float64) *Evaluation {
	return &Evaluation{
		Cost:           cost,
		PolicyGradient: vec(1, 2),
		Positions:      []float64{position},
		Decision:       decision,
		Gradients:      []*tensor.Tensor{vec(2, 4)},
	}
}

// examples yields n examples labeled 1.
func examples(n int) iter.Seq[Example] {
	data := make([]Example, n)
	for i := range data {
		data[i] = Example{Targets: []int{1}}
	}
	return slices.Values(data)
}

type fixture struct {
	trainer    *Trainer
	oracle     *scriptedOracle
	supervised *recordingOptimizer
	policy     *recordingOptimizer
	ctrl       *attention.Controller
	events     []Event
}

func newFixture(t *testing.T, batchSize int, evals ...*Evaluation) *fixture {
	t.Helper()
	f := &fixture{
		oracle:     &scriptedOracle{evals: evals},
		supervised: &recordingOptimizer{},
		policy:     &recordingOptimizer{},
	}

	acc, err := NewBatchAccumulator(
		&Binding{Updater: f.supervised, Shapes: []tensor.Shape{{2}}},
		&Binding{Updater: f.policy, Shapes: []tensor.Shape{{2}}},
	)
	require.NoError(t, err)

	g, err := attention.NewGaussian(mat.NewDense(1, 1, []float64{0.01}), mat.NewDense(1, 1, []float64{0.25}))
	require.NoError(t, err)
	f.ctrl, err = attention.NewController(g, g.Small(), g.Large())
	require.NoError(t, err)

	f.trainer, err = NewWithAccumulator(f.oracle, acc, f.ctrl, Config{BatchSize: batchSize})
	require.NoError(t, err)
	f.trainer.SetMonitor(MonitorFunc(func(ev Event) { f.events = append(f.events, ev) }))
	return f
}

func (f *fixture) count(kind EventKind) int {
	n := 0
	for _, ev := range f.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (f *fixture) of(kind EventKind) []Event {
	var out []Event
	for _, ev := range f.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
