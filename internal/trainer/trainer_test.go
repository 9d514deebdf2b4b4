package trainer

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/born-ml/glimpse/internal/attention"
	"github.com/born-ml/glimpse/internal/nn"
	"github.com/born-ml/glimpse/internal/reinforce"
	"github.com/born-ml/glimpse/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscardedExamplesMutateNothing(t *testing.T) {
	bad := []*Evaluation{
		eval(math.NaN(), 1, 0),
		eval(math.Inf(1), 1, 0),
		eval(CostCeiling+0.01, 1, 0),
	}
	f := newFixture(t, 2, bad...)
	f.trainer.SetBaseline(0.5)

	res, err := f.trainer.TrainEpoch(examples(3))
	require.ErrorIs(t, err, ErrCostOverflow)
	assert.Nil(t, res)

	assert.True(t, f.trainer.Accumulator().IsZero())
	b, ok := f.trainer.Baseline().Value()
	assert.True(t, ok)
	assert.Equal(t, 0.5, b, "baseline untouched by a degenerate epoch")
	assert.Equal(t, 3, f.count(EventSkip))
	assert.Zero(t, f.count(EventFlush))
	assert.Zero(t, f.trainer.Epoch())

	ends := f.of(EventEpochEnd)
	require.Len(t, ends, 1)
	assert.Nil(t, ends[0].Result)
}

func TestCostAtCeilingIsAccepted(t *testing.T) {
	f := newFixture(t, 20, eval(CostCeiling, 1, 0))
	res, err := f.trainer.TrainEpoch(examples(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Accepted)
}

func TestBatchCountsAcceptedExamplesOnly(t *testing.T) {
	f := newFixture(t, 5,
		eval(math.NaN(), 1, 0),
		eval(1.0, 1, 0), // reward 0.005
		eval(math.NaN(), 1, 0),
		eval(3.0, 0, 0), // reward 0
		eval(math.NaN(), 1, 0),
	)

	res, err := f.trainer.TrainEpoch(examples(5))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 3, res.Skipped)
	assert.Zero(t, res.Batches, "batch size is reached only by accepted examples")
	assert.InDelta(t, 2.0, res.MeanCost, 1e-12)
	assert.InDelta(t, reinforce.Bonus/2, res.MeanReward, 1e-12)
}

func TestBatchRewardSumOnFlush(t *testing.T) {
	f := newFixture(t, 2,
		eval(math.NaN(), 1, 0),
		eval(1.0, 1, 0),
		eval(math.NaN(), 1, 0),
		eval(3.0, 0, 0),
	)

	_, err := f.trainer.TrainEpoch(examples(4))
	require.NoError(t, err)

	flushes := f.of(EventFlush)
	require.Len(t, flushes, 1)
	assert.InDelta(t, reinforce.Bonus, flushes[0].Reward, 1e-12)
	assert.InDelta(t, 4.0, flushes[0].Cost, 1e-12)
}

func TestSaturationVetoesReward(t *testing.T) {
	f := newFixture(t, 20, eval(1.0, 1, -0.9))
	res, err := f.trainer.TrainEpoch(examples(4))
	require.NoError(t, err)
	assert.Zero(t, res.MeanReward)
	assert.InDelta(t, 0.9, res.MeanPosition, 1e-12)
}

func TestPolicyGradientWeightedAgainstBaseline(t *testing.T) {
	f := newFixture(t, 20, eval(1.0, 0, 0)) // wrong decision, reward 0
	f.trainer.SetBaseline(0.5)

	_, err := f.trainer.TrainEpoch(examples(1))
	require.NoError(t, err)

	// rawPolicyGrad * -(0 - 0.5) = [1, 2] * 0.5
	assert.Equal(t, []float64{0.5, 1}, f.trainer.Accumulator().Policy().Data())
	assert.Equal(t, []float64{2, 4}, f.trainer.Accumulator().Gradients()[0].Data())
}

func TestNoPolicyAccumulationBeforeWarmUp(t *testing.T) {
	f := newFixture(t, 20, eval(1.0, 1, 0))

	_, err := f.trainer.TrainEpoch(examples(3))
	require.NoError(t, err)

	assert.True(t, f.trainer.Accumulator().Policy().IsZero())
	assert.Equal(t, []float64{6, 12}, f.trainer.Accumulator().Gradients()[0].Data())
}

func TestWarmUpSetsBaselineMidEpoch(t *testing.T) {
	f := newFixture(t, 20, eval(1.0, 0, 0)) // reward 0 throughout

	_, err := f.trainer.TrainEpoch(examples(reinforce.WarmUpExamples + 40))
	require.NoError(t, err)

	set := f.of(EventBaselineSet)
	require.Len(t, set, 1)
	// Emitted while the 2001st example is being processed.
	assert.Equal(t, reinforce.WarmUpExamples, set[0].Accepted)
	assert.Zero(t, set[0].Baseline)

	// Policy updates start with the first flush after warm-up. Every reward
	// equals the baseline, so the accumulated policy gradient is all zero.
	assert.Empty(t, f.policy.steps)
	assert.Equal(t, 2, f.count(EventZeroPolicyGradient))
}

func TestPolicyUpdateGatedOnBaseline(t *testing.T) {
	f := newFixture(t, 2, eval(1.0, 0, 0))

	_, err := f.trainer.TrainEpoch(examples(4))
	require.NoError(t, err)
	assert.Len(t, f.supervised.steps, 2)
	assert.Empty(t, f.policy.steps)

	// The epoch mean (0) becomes the baseline; rewards of 0 then weight by 0.
	f.trainer.SetBaseline(0.5)
	_, err = f.trainer.TrainEpoch(examples(2))
	require.NoError(t, err)
	require.Len(t, f.policy.steps, 1)
	assert.Equal(t, [][]float64{{0.5, 1}}, f.policy.steps[0])
}

func TestFirstBatchGuard(t *testing.T) {
	f := newFixture(t, 3, eval(1.0, 1, 0))

	_, err := f.trainer.TrainEpoch(examples(6))
	require.NoError(t, err)

	flushes := f.of(EventFlush)
	require.Len(t, flushes, 2)
	assert.Equal(t, 2, flushes[0].Batch, "first batch counter is decremented")
	assert.Equal(t, 3, flushes[1].Batch)

	// Means are still taken over the configured batch size.
	require.Len(t, f.supervised.steps, 2)
	assert.InDeltaSlice(t, []float64{2, 4}, f.supervised.steps[0][0], 1e-12)
}

func TestFlushZeroesAccumulatorsAfterEveryBatch(t *testing.T) {
	f := newFixture(t, 2, eval(1.0, 0, 0))
	f.trainer.SetBaseline(0.5)

	var zeroAtFlush []bool
	f.trainer.SetMonitor(MonitorFunc(func(ev Event) {
		if ev.Kind == EventFlush {
			zeroAtFlush = append(zeroAtFlush, f.trainer.Accumulator().IsZero())
		}
	}))

	_, err := f.trainer.TrainEpoch(examples(6))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, zeroAtFlush)
}

func TestTrailingPartialBatchCarriesOver(t *testing.T) {
	f := newFixture(t, 4, eval(1.0, 1, 0))

	_, err := f.trainer.TrainEpoch(examples(3))
	require.NoError(t, err)
	assert.Empty(t, f.supervised.steps)
	assert.Equal(t, []float64{6, 12}, f.trainer.Accumulator().Gradients()[0].Data())

	_, err = f.trainer.TrainEpoch(examples(4))
	require.NoError(t, err)
	require.Len(t, f.supervised.steps, 1)
	// Seven examples accumulated, averaged over the batch size of four.
	assert.Equal(t, [][]float64{{3.5, 7}}, f.supervised.steps[0])
}

func TestEpochResultMatchesTotals(t *testing.T) {
	f := newFixture(t, 2,
		eval(1.0, 1, 0.2),
		eval(2.0, 0, -0.4),
		eval(3.0, 1, 0.6),
	)

	res, err := f.trainer.TrainEpoch(examples(3))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Epoch)
	assert.Equal(t, 1, res.Batches)
	assert.InDelta(t, 2.0, res.MeanCost, 1e-12)
	assert.InDelta(t, 2*reinforce.Bonus/3, res.MeanReward, 1e-12)
	assert.InDelta(t, 0.4, res.MeanPosition, 1e-12)

	b, ok := f.trainer.Baseline().Value()
	require.True(t, ok)
	assert.Equal(t, res.MeanReward, b)
	assert.Equal(t, 1, f.trainer.Epoch())
	assert.Equal(t, "J: 2.00, Avg R: 0.0033, Avg P: 0.40", res.String())
}

func TestCovarianceSwitchesAfterSustainedLowReward(t *testing.T) {
	f := newFixture(t, 1, eval(1.0, 0, 0))

	_, err := f.trainer.TrainEpoch(examples(attention.Patience))
	require.NoError(t, err)
	assert.Equal(t, attention.Small, f.trainer.CovarianceMode())

	// The pending counter restarts every epoch.
	_, err = f.trainer.TrainEpoch(examples(attention.Patience))
	require.NoError(t, err)
	assert.Equal(t, attention.Small, f.trainer.CovarianceMode())

	_, err = f.trainer.TrainEpoch(examples(attention.Patience + 1))
	require.NoError(t, err)
	assert.Equal(t, attention.Large, f.trainer.CovarianceMode())

	switches := f.of(EventCovarianceSwitch)
	require.Len(t, switches, 1)
	assert.Equal(t, attention.Large, switches[0].Mode)
	assert.Equal(t, attention.Patience+1, switches[0].Accepted)
}

func TestCovarianceReturnsToSmall(t *testing.T) {
	f := newFixture(t, 1, eval(1.0, 0, 0))
	_, err := f.trainer.TrainEpoch(examples(attention.Patience + 1))
	require.NoError(t, err)
	require.Equal(t, attention.Large, f.trainer.CovarianceMode())

	f.oracle.evals = []*Evaluation{eval(1.0, 1, 0)}
	_, err = f.trainer.TrainEpoch(examples(attention.Patience + 1))
	require.NoError(t, err)
	assert.Equal(t, attention.Small, f.trainer.CovarianceMode())
}

func TestHeartbeatEveryThousandAccepted(t *testing.T) {
	f := newFixture(t, 20, eval(1.0, 1, 0))
	var out bytes.Buffer
	f.trainer.SetMonitor(NewProgress(&out))

	_, err := f.trainer.TrainEpoch(examples(2000))
	require.NoError(t, err)
	assert.Equal(t, "..\n", out.String())
}

func TestProgressMarkers(t *testing.T) {
	f := newFixture(t, 1, eval(math.NaN(), 1, 0), eval(1.0, 0, 0))
	var out bytes.Buffer
	f.trainer.SetMonitor(NewProgress(&out))

	_, err := f.trainer.TrainEpoch(examples(2 * (attention.Patience + 1)))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("X", attention.Patience)+"X[LCOV] \n", out.String())
}

func TestZeroPolicyGradientMarker(t *testing.T) {
	f := newFixture(t, 1, eval(1.0, 1, 0))
	f.trainer.SetBaseline(reinforce.Bonus)
	var out bytes.Buffer
	f.trainer.SetMonitor(NewProgress(&out))

	_, err := f.trainer.TrainEpoch(examples(2))
	require.NoError(t, err)
	assert.Equal(t, "[0 WLG] [0 WLG] \n", out.String())
}

func TestLogMonitor(t *testing.T) {
	f := newFixture(t, 20, eval(math.NaN(), 1, 0), eval(1.0, 1, 0))
	var buf bytes.Buffer
	f.trainer.SetMonitor(NewLogMonitor(log.New(&buf, "", 0)))

	_, err := f.trainer.TrainEpoch(examples(2))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "event=skip")
	assert.Contains(t, buf.String(), "event=epoch_end J: 1.00")
}

func TestBackpropDisabledNeverRequestsGradients(t *testing.T) {
	oracle := &scriptedOracle{evals: []*Evaluation{{Cost: 1, PolicyGradient: vec(1, 2), Decision: 1}}}
	policy := nn.NewParameter("wl", vec(0, 0))
	f := newFixture(t, 2)

	tr, err := New(oracle, Params{Policy: policy}, f.ctrl, Config{BatchSize: 2, DisableBackprop: true})
	require.NoError(t, err)
	tr.SetMonitor(Discard)

	_, err = tr.TrainEpoch(examples(4))
	require.NoError(t, err)
	for _, req := range oracle.reqs {
		assert.False(t, req.Gradients)
		assert.True(t, req.PolicyGradient)
	}
	assert.True(t, tr.Config().DisableBackprop)
}

func TestReinforceDisabled(t *testing.T) {
	w := nn.NewParameter("w", vec(0, 0))
	oracle := OracleFunc(func(_ Example, req Request) (*Evaluation, error) {
		assert.False(t, req.PolicyGradient)
		return &Evaluation{Cost: 1, Decision: 0, Gradients: []*tensor.Tensor{vec(1, 1)}}, nil
	})

	tr, err := New(oracle, Params{Supervised: []*nn.Parameter{w}}, nil, Config{
		BatchSize:        2,
		DisableReinforce: true,
		LearningRate:     0.1,
	})
	require.NoError(t, err)
	tr.SetMonitor(Discard)

	_, err = tr.TrainEpoch(examples(2))
	require.NoError(t, err)
	assert.Less(t, w.Tensor().Data()[0], 0.0, "supervised update applied")
	assert.Nil(t, tr.Accumulator().Policy())
	assert.Equal(t, attention.Small, tr.CovarianceMode())
}

func TestOracleErrorAbortsEpoch(t *testing.T) {
	boom := errors.New("boom")
	f := newFixture(t, 2)
	f.trainer.oracle = OracleFunc(func(Example, Request) (*Evaluation, error) { return nil, boom })

	_, err := f.trainer.TrainEpoch(examples(1))
	require.ErrorIs(t, err, boom)
}

func TestMalformedEvaluationRejected(t *testing.T) {
	f := newFixture(t, 2, &Evaluation{Cost: 1, Gradients: []*tensor.Tensor{vec(1, 1)}})
	_, err := f.trainer.TrainEpoch(examples(1))
	require.ErrorIs(t, err, ErrPolicyGradient)
	assert.True(t, f.trainer.Accumulator().IsZero())

	f = newFixture(t, 2, &Evaluation{Cost: 1, PolicyGradient: vec(1, 1)})
	_, err = f.trainer.TrainEpoch(examples(1))
	require.ErrorIs(t, err, ErrGradientCount)
}

func TestWrongGradientShapeMutatesNothing(t *testing.T) {
	bad := eval(1.0, 0, 0)
	bad.Gradients = []*tensor.Tensor{vec(1, 2, 3)}
	f := newFixture(t, 2, bad)
	f.trainer.SetBaseline(0.5)

	_, err := f.trainer.TrainEpoch(examples(1))
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)

	assert.True(t, f.trainer.Accumulator().IsZero(), "no policy contribution leaks into the next batch")
	assert.Zero(t, f.trainer.rewards.Count())
	assert.Zero(t, f.trainer.rewards.Total())
	b, ok := f.trainer.Baseline().Value()
	require.True(t, ok)
	assert.Equal(t, 0.5, b)
}

func TestNewValidation(t *testing.T) {
	f := newFixture(t, 2)

	_, err := New(f.oracle, Params{}, nil, Config{})
	assert.ErrorIs(t, err, ErrNoPolicy)

	_, err = New(nil, Params{Policy: nn.NewParameter("wl", vec(0))}, f.ctrl, Config{DisableBackprop: true})
	assert.ErrorIs(t, err, ErrNoOracle)

	_, err = New(f.oracle, Params{}, nil, Config{BatchSize: -1, DisableReinforce: true})
	assert.Error(t, err)

	_, err = New(f.oracle, Params{}, nil, Config{Method: "rmsprop", DisableReinforce: true})
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 0.8, cfg.PolicyMaxNorm)
}

func TestMultiMonitorFansOut(t *testing.T) {
	f := newFixture(t, 20, eval(math.NaN(), 1, 0), eval(1.0, 1, 0))
	var out bytes.Buffer
	skips := 0
	f.trainer.SetMonitor(Multi(NewProgress(&out), MonitorFunc(func(ev Event) {
		if ev.Kind == EventSkip {
			skips++
		}
	})))

	_, err := f.trainer.TrainEpoch(examples(2))
	require.NoError(t, err)
	assert.Equal(t, "X\n", out.String())
	assert.Equal(t, 1, skips)
}
