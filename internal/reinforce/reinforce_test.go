package reinforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReward(t *testing.T) {
	tests := []struct {
		name      string
		decision  int
		label     int
		positions []float64
		want      float64
	}{
		{"match", 1, 1, []float64{0.1, -0.2}, Bonus},
		{"mismatch", 0, 1, []float64{0.1}, 0},
		{"saturated match", 1, 1, []float64{0.1, -0.81}, 0},
		{"boundary not saturated", 2, 2, []float64{0.8}, Bonus},
		{"no positions", 3, 3, nil, Bonus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reward(tt.decision, tt.label, tt.positions)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, []float64{0, Bonus}, got)
		})
	}
}

func TestTrackerBaselineUnsetUntilWarmUp(t *testing.T) {
	tr := NewTracker()
	for i := range WarmUpExamples {
		warmed := tr.Observe(Bonus)
		require.False(t, warmed, "example %d", i)
	}
	assert.False(t, tr.Baseline().Valid())

	_, ok := tr.Weight(0)
	assert.False(t, ok, "no weight before warm-up")

	assert.True(t, tr.Observe(0))
	b, ok := tr.Baseline().Value()
	require.True(t, ok)
	assert.InDelta(t, Bonus*WarmUpExamples/float64(WarmUpExamples+1), b, 1e-12)
}

func TestTrackerWarmUpIsOneShot(t *testing.T) {
	tr := NewTracker()
	for range WarmUpExamples + 1 {
		tr.Observe(0)
	}
	require.True(t, tr.Baseline().Valid())

	for range 100 {
		assert.False(t, tr.Observe(Bonus))
	}
	b, _ := tr.Baseline().Value()
	assert.Zero(t, b, "baseline is a snapshot, not updated mid-epoch")
}

func TestTrackerWeight(t *testing.T) {
	tr := NewTracker()
	tr.SetBaseline(0.5)

	w, ok := tr.Weight(0)
	require.True(t, ok)
	assert.Equal(t, 0.5, w)

	w, _ = tr.Weight(0.75)
	assert.Equal(t, -0.25, w)
}

func TestTrackerFinalizeEpoch(t *testing.T) {
	tr := NewTracker()
	tr.Observe(Bonus)
	tr.Observe(0)
	tr.Observe(Bonus)
	tr.Observe(Bonus)

	mean, ok := tr.FinalizeEpoch()
	require.True(t, ok)
	assert.InDelta(t, 0.75*Bonus, mean, 1e-12)

	b, valid := tr.Baseline().Value()
	assert.True(t, valid)
	assert.Equal(t, mean, b)
	assert.Zero(t, tr.Count())
	assert.Zero(t, tr.Total())
}

func TestTrackerFinalizeOverwritesWarmUp(t *testing.T) {
	tr := NewTracker()
	for range WarmUpExamples + 1 {
		tr.Observe(Bonus)
	}
	for range WarmUpExamples + 1 {
		tr.Observe(0)
	}
	mean, ok := tr.FinalizeEpoch()
	require.True(t, ok)
	assert.InDelta(t, Bonus/2, mean, 1e-12)
	b, _ := tr.Baseline().Value()
	assert.InDelta(t, Bonus/2, b, 1e-12)
}

func TestTrackerFinalizeEmptyEpoch(t *testing.T) {
	tr := NewTracker()
	_, ok := tr.FinalizeEpoch()
	assert.False(t, ok)
	assert.False(t, tr.Baseline().Valid())
	assert.Equal(t, "unset", tr.Baseline().String())
}
