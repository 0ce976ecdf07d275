// Package deficit implements DeficitLedger (C5): per-child conservation
// of borrowed time across approval events, capped at a hard ceiling so
// a child cannot accumulate unbounded owed minutes between server syncs.
package deficit

import (
	"sync"

	"github.com/allow2/offlinecore/internal/metrics"
)

// Ceiling is the maximum seconds_owed value per child (spec §3, a
// 30-minute ceiling).
const Ceiling = 1800

// Ledger is a mutex-guarded per-child deficit map. Like NonceLedger, it
// may be read from outside the owning sequence (a UI status query), so
// it uses sync.RWMutex rather than relying on single-threaded
// sequencing (spec §5).
type Ledger struct {
	mu    sync.RWMutex
	owed  map[uint64]int
}

// New creates an empty deficit ledger.
func New() *Ledger {
	return &Ledger{owed: make(map[uint64]int)}
}

// Get returns the current seconds owed by child.
func (l *Ledger) Get(child uint64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.owed[child]
}

// Add increments child's deficit by seconds, saturating at Ceiling.
func (l *Ledger) Add(child uint64, seconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.owed[child] + seconds
	if next > Ceiling {
		next = Ceiling
		metrics.DeficitCeilingHits.Inc()
	}
	if next < 0 {
		next = 0
	}
	l.owed[child] = next
	metrics.DeficitAdjustments.WithLabelValues("add").Inc()
	metrics.DeficitSecondsOwed.Observe(float64(next))
}

// Clear zeroes child's deficit. Idempotent.
func (l *Ledger) Clear(child uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owed[child] = 0
	metrics.DeficitAdjustments.WithLabelValues("clear").Inc()
	metrics.DeficitSecondsOwed.Observe(0)
}

// Apply returns max(0, remaining - deficit) without mutating the ledger.
func (l *Ledger) Apply(child uint64, remaining int) int {
	l.mu.RLock()
	owed := l.owed[child]
	l.mu.RUnlock()

	metrics.DeficitAdjustments.WithLabelValues("apply").Inc()

	result := remaining - owed
	if result < 0 {
		result = 0
	}
	return result
}

// IsExceeded reports whether child has reached the ceiling. While
// exceeded, callers must refuse further voice-code-granted extensions
// until a server sync or explicit forgiveness (Clear) resets the ledger.
func (l *Ledger) IsExceeded(child uint64) bool {
	return l.Get(child) >= Ceiling
}
