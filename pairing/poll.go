package pairing

import (
	"context"
	"time"

	"github.com/allow2/offlinecore/internal/metrics"
)

// pollLoop ticks every PollInterval, invoking Status and driving state
// transitions, until a terminal state is reached or this generation is
// superseded by a later Start/Cancel (spec §4.6). Late completions for
// a stale generation are dropped silently, standing in for the
// weak-handle pattern of spec §9 in a language without weak pointers.
func (s *Session) pollLoop(ctx context.Context, gen uint64) {
	s.mu.Lock()
	interval := s.pollInterval
	stop := s.pollStop
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.currentGeneration(gen) {
				return
			}
			if s.pollOnce(ctx, gen) {
				return
			}
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) currentGeneration(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// pollOnce performs one Status round trip and applies the resulting
// transition. It returns true if polling should stop (a terminal state
// was reached).
func (s *Session) pollOnce(ctx context.Context, gen uint64) bool {
	s.mu.Lock()
	sessionID := s.sessionID
	mode := s.mode
	state := s.state
	s.mu.Unlock()

	start := time.Now()
	resp, err := s.transport.Status(ctx, sessionID)
	metrics.PairingStageDuration.WithLabelValues(state.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		// Network errors during polling are recovered: the next tick
		// retries until the expiry timer fires (spec §7).
		return false
	}

	if !s.currentGeneration(gen) {
		return true
	}

	if resp.Scanned && mode == ModeQR && state == StateWaiting {
		s.transition(StateScanned)
	}

	if !resp.Completed {
		return false
	}

	if !resp.Success {
		final := classifyError(resp.Error)
		s.finish(final)
		return true
	}

	s.transition(StateAuthenticating)

	creds := Credentials{
		UserID:    resp.UserID,
		PairID:    resp.PairID,
		PairToken: resp.PairToken,
		Children:  resp.Children,
		PairedAt:  time.Now().UTC(),
	}
	if err := s.persistCredentials(creds); err != nil {
		s.finish(StateFailed)
		return true
	}

	s.finish(StateCompleted)
	return true
}

// expiryTimer fires at d and, if the session is still in this
// generation and non-terminal, transitions to Expired and stops
// polling.
func (s *Session) expiryTimer(gen uint64, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C

	s.mu.Lock()
	if s.generation != gen || s.state.IsTerminal() {
		s.mu.Unlock()
		return
	}
	s.stopPollingLocked()
	s.mu.Unlock()

	s.finish(StateExpired)
}

// finish stops polling and transitions to a terminal state, recording
// the outcome metric.
func (s *Session) finish(final State) {
	s.mu.Lock()
	s.stopPollingLocked()
	wasActive := s.active
	s.active = false
	s.mu.Unlock()

	s.transition(final)
	metrics.PairingsCompleted.WithLabelValues(final.String()).Inc()
	if wasActive {
		metrics.PairingSessionsActive.Dec()
	}
}
