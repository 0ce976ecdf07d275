// Package warning implements WarningMachine (C7): the remaining-time
// threshold state machine that drives the child device's "you're almost
// out of time" UI and the final block trigger. Level transitions are
// monotone one-way: a rising level always notifies, a falling level
// only notifies again after an explicit Reset.
package warning

import "time"

// Level is a warning urgency level, strictly ordered by value so
// comparisons (l1 > l2 means "more urgent") are plain integer compares.
type Level int

const (
	LevelNone Level = iota
	LevelGentle
	LevelWarning
	LevelUrgent
	LevelBlocked
)

func (l Level) String() string {
	switch l {
	case LevelGentle:
		return "gentle"
	case LevelWarning:
		return "warning"
	case LevelUrgent:
		return "urgent"
	case LevelBlocked:
		return "blocked"
	default:
		return "none"
	}
}

// Thresholds, in seconds remaining (spec §4.7).
const (
	GentleThreshold  = 900
	WarningThreshold = 300
	UrgentThreshold  = 60
	CountdownTick30  = 30
	CountdownTick10  = 10
)

func levelFor(remaining int) Level {
	switch {
	case remaining <= 0:
		return LevelBlocked
	case remaining <= UrgentThreshold:
		return LevelUrgent
	case remaining <= WarningThreshold:
		return LevelWarning
	case remaining <= GentleThreshold:
		return LevelGentle
	default:
		return LevelNone
	}
}

// Ticker abstracts a periodic timer so tests can drive ticks
// deterministically instead of sleeping on a real clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// realTicker wraps time.Ticker.
type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}
