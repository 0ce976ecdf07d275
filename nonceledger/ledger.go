// Package nonceledger implements NonceLedger (C3): a persisted set of
// consumed grant/voice-request nonces, guarding against replay. Unlike
// the teacher's NonceCache (a background-ticker replay cache scoped per
// key_id), this ledger runs garbage collection opportunistically on
// every Record call, per spec §4.3, and exposes Contains/Record/GC as
// the three primitives the grant and voice-code protocols need.
package nonceledger

import (
	"sync"
	"time"

	"github.com/allow2/offlinecore/internal/metrics"
)

// entry records when a nonce was first seen.
type entry struct {
	firstSeen time.Time
}

// Ledger is a mutex-guarded in-memory nonce set. It is safe to read
// concurrently with the owning sequence (e.g. from a UI status query),
// per spec §5.
type Ledger struct {
	mu  sync.RWMutex
	ttl time.Duration
	seen map[string]entry
}

// DefaultTTL is the nonce retention window (spec §6), at least as long
// as the maximum grant validity.
const DefaultTTL = 7 * 24 * time.Hour

// New creates an empty Ledger with the given TTL. Pass DefaultTTL unless
// a shorter retention has been explicitly configured.
func New(ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{
		ttl:  ttl,
		seen: make(map[string]entry),
	}
}

// Contains reports whether nonce has already been recorded.
func (l *Ledger) Contains(nonce string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[nonce]
	metrics.NonceChecks.WithLabelValues(statusLabel(ok)).Inc()
	if ok {
		metrics.ReplayAttacksDetected.Inc()
	}
	return ok
}

func statusLabel(replay bool) string {
	if replay {
		return "replay"
	}
	return "fresh"
}

// Record inserts nonce, stamped with seenAt, and opportunistically runs
// GC with threshold seenAt - max(ledger ttl, 7 days), per spec §4.3. The
// caller must call Record in the same critical section as any side
// effect the nonce authorizes (deficit update, time grant) — a crash
// between the two would otherwise permit reuse.
func (l *Ledger) Record(nonce string, seenAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seen[nonce] = entry{firstSeen: seenAt}
	metrics.NonceLedgerSize.Set(float64(len(l.seen)))

	threshold := l.ttl
	if threshold < DefaultTTL {
		threshold = DefaultTTL
	}
	l.gcLocked(seenAt.Add(-threshold))
}

// GC prunes entries with firstSeen < before.
func (l *Ledger) GC(before time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gcLocked(before)
}

func (l *Ledger) gcLocked(before time.Time) {
	metrics.NonceLedgerGCRuns.Inc()
	for n, e := range l.seen {
		if e.firstSeen.Before(before) {
			delete(l.seen, n)
		}
	}
	metrics.NonceLedgerSize.Set(float64(len(l.seen)))
}

// Len returns the number of nonces currently tracked. Intended for
// tests and diagnostics.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}
