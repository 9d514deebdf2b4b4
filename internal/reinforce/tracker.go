package reinforce

import "fmt"

// Baseline is the running average reward. The zero value is unset: no
// arithmetic may be done against it until Valid reports true.
type Baseline struct {
	value float64
	valid bool
}

// NewBaseline returns a set baseline holding v.
func NewBaseline(v float64) Baseline {
	return Baseline{value: v, valid: true}
}

// Value returns the baseline and whether it has been set.
func (b Baseline) Value() (float64, bool) {
	return b.value, b.valid
}

// Valid reports whether the baseline has been set.
func (b Baseline) Valid() bool {
	return b.valid
}

// String implements fmt.Stringer.
func (b Baseline) String() string {
	if !b.valid {
		return "unset"
	}
	return fmt.Sprintf("%.4f", b.value)
}

// Tracker accumulates epoch reward totals and owns the baseline.
//
// Within an epoch the baseline is set at most once, by the warm-up rule.
// FinalizeEpoch then overwrites it with the epoch mean for use during the
// next epoch.
type Tracker struct {
	baseline Baseline
	total    float64
	count    int
}

// NewTracker creates a tracker with an unset baseline.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records one accepted example's reward and applies the warm-up
// rule. It returns true when this observation set the baseline.
func (t *Tracker) Observe(reward float64) bool {
	t.total += reward
	t.count++

	if !t.baseline.valid && t.count > WarmUpExamples {
		t.baseline = NewBaseline(t.total / float64(t.count))
		return true
	}
	return false
}

// Baseline returns the current baseline.
func (t *Tracker) Baseline() Baseline {
	return t.baseline
}

// SetBaseline overwrites the baseline, for example when resuming training.
func (t *Tracker) SetBaseline(v float64) {
	t.baseline = NewBaseline(v)
}

// Weight returns the policy-gradient scale -(reward - baseline). Gradient
// descent on the weighted gradient is ascent toward rewards above the
// baseline. ok is false while the baseline is unset.
func (t *Tracker) Weight(reward float64) (w float64, ok bool) {
	b, ok := t.baseline.Value()
	if !ok {
		return 0, false
	}
	return -(reward - b), true
}

// Count returns the number of rewards observed this epoch.
func (t *Tracker) Count() int {
	return t.count
}

// Total returns the summed reward observed this epoch.
func (t *Tracker) Total() float64 {
	return t.total
}

// FinalizeEpoch sets the baseline to the epoch's mean reward and resets the
// epoch totals. With no observations it leaves the baseline untouched and
// returns false.
func (t *Tracker) FinalizeEpoch() (mean float64, ok bool) {
	if t.count == 0 {
		return 0, false
	}
	mean = t.total / float64(t.count)
	t.baseline = NewBaseline(mean)
	t.total, t.count = 0, 0
	return mean, true
}

// ResetEpoch drops the epoch totals without touching the baseline.
func (t *Tracker) ResetEpoch() {
	t.total, t.count = 0, 0
}
