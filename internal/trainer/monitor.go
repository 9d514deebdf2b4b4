package trainer

import (
	"io"
	"log"

	"github.com/born-ml/glimpse/internal/attention"
)

// EventKind identifies an observable training event.
type EventKind int

// Training events.
const (
	EventSkip               EventKind = iota // Example discarded for non-finite or excessive cost
	EventBaselineSet                         // Warm-up rule set the baseline
	EventFlush                               // Batch gradients applied and cleared
	EventZeroPolicyGradient                  // Policy update skipped: accumulated gradient is all zero
	EventCovarianceSwitch                    // Covariance mode changed
	EventHeartbeat                           // Progress heartbeat
	EventEpochEnd                            // Epoch finished
)

// String returns a human-readable event name.
func (k EventKind) String() string {
	switch k {
	case EventSkip:
		return "skip"
	case EventBaselineSet:
		return "baseline_set"
	case EventFlush:
		return "flush"
	case EventZeroPolicyGradient:
		return "zero_policy_gradient"
	case EventCovarianceSwitch:
		return "covariance_switch"
	case EventHeartbeat:
		return "heartbeat"
	case EventEpochEnd:
		return "epoch_end"
	default:
		return "unknown"
	}
}

// Event is a single observation emitted by the trainer.
type Event struct {
	Kind     EventKind
	Epoch    int            // 1-based epoch number
	Accepted int            // Accepted examples so far this epoch
	Batch    int            // Batch example counter at flush time (after the first-batch guard)
	Cost     float64        // EventSkip: offending cost; EventFlush: batch cost sum
	Reward   float64        // EventFlush: batch reward sum
	Baseline float64        // EventBaselineSet: new baseline
	Mode     attention.Mode // EventCovarianceSwitch: mode switched to
	Result   *EpochResult   // EventEpochEnd: nil for a degenerate epoch
}

// Monitor receives training events. Implementations must not call back into
// the trainer.
type Monitor interface {
	Observe(ev Event)
}

// MonitorFunc adapts a function to the Monitor interface.
type MonitorFunc func(ev Event)

// Observe calls f(ev).
func (f MonitorFunc) Observe(ev Event) { f(ev) }

// Discard drops every event.
var Discard Monitor = MonitorFunc(func(Event) {})

// Multi fans events out to several monitors in order.
func Multi(monitors ...Monitor) Monitor {
	return MonitorFunc(func(ev Event) {
		for _, m := range monitors {
			m.Observe(ev)
		}
	})
}

// progress writes compact status markers.
type progress struct {
	w io.Writer
}

// NewProgress returns a monitor that writes terse markers to w:
//
//	X        example discarded
//	[0 WLG]  policy update skipped on an all-zero gradient
//	[LCOV]   switched to large covariance
//	[SCOV]   switched to small covariance
//	.        heartbeat
//
// and a newline at the end of each non-degenerate epoch.
func NewProgress(w io.Writer) Monitor {
	return &progress{w: w}
}

func (p *progress) Observe(ev Event) {
	var marker string
	switch ev.Kind {
	case EventSkip:
		marker = "X"
	case EventZeroPolicyGradient:
		marker = "[0 WLG] "
	case EventCovarianceSwitch:
		if ev.Mode == attention.Large {
			marker = "[LCOV] "
		} else {
			marker = "[SCOV] "
		}
	case EventHeartbeat:
		marker = "."
	case EventEpochEnd:
		if ev.Result != nil {
			marker = "\n"
		}
	}
	if marker != "" {
		_, _ = io.WriteString(p.w, marker)
	}
}

// logMonitor writes one line per significant event.
type logMonitor struct {
	l *log.Logger
}

// NewLogMonitor returns a monitor that logs skips, baseline changes,
// covariance switches and epoch summaries to l. Flushes and heartbeats are
// not logged.
func NewLogMonitor(l *log.Logger) Monitor {
	return &logMonitor{l: l}
}

func (m *logMonitor) Observe(ev Event) {
	switch ev.Kind {
	case EventSkip:
		m.l.Printf("epoch=%d event=%s accepted=%d cost=%g", ev.Epoch, ev.Kind, ev.Accepted, ev.Cost)
	case EventBaselineSet:
		m.l.Printf("epoch=%d event=%s accepted=%d baseline=%.6f", ev.Epoch, ev.Kind, ev.Accepted, ev.Baseline)
	case EventZeroPolicyGradient:
		m.l.Printf("epoch=%d event=%s accepted=%d", ev.Epoch, ev.Kind, ev.Accepted)
	case EventCovarianceSwitch:
		m.l.Printf("epoch=%d event=%s accepted=%d mode=%s", ev.Epoch, ev.Kind, ev.Accepted, ev.Mode)
	case EventEpochEnd:
		if ev.Result == nil {
			m.l.Printf("epoch=%d event=%s result=%q", ev.Epoch, ev.Kind, ErrCostOverflow.Error())
			return
		}
		m.l.Printf("epoch=%d event=%s %s", ev.Epoch, ev.Kind, ev.Result)
	}
}
