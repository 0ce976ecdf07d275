package pairing

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/internal/dispatcher"
	"github.com/allow2/offlinecore/internal/metrics"
	"github.com/allow2/offlinecore/secretstore"
)

// Observer is notified on every state transition, in registration
// order, on the session's dispatcher (spec §9: no observer may
// re-enter the machine synchronously).
type Observer func(State)

// Session drives one pairing lifecycle. Only one Session may be
// non-idle per device; Start while non-idle performs an implicit
// Cancel first (spec §4.6).
type Session struct {
	mu sync.Mutex

	state      State
	mode       Mode
	sessionID  string
	deviceName string

	transport Transport
	store     secretstore.SecretStore
	provider  sagecrypto.Provider

	dispatcher *dispatcher.Dispatcher
	observers  []Observer

	pollStop   chan struct{}
	generation uint64
	active     bool // true between Start and the session reaching a terminal state or Idle

	stageEntered time.Time
	pollInterval time.Duration // overridable in tests; defaults to PollInterval
}

// New creates an idle Session.
func New(transport Transport, store secretstore.SecretStore, provider sagecrypto.Provider) *Session {
	return &Session{
		transport:    transport,
		store:        store,
		provider:     provider,
		dispatcher:   dispatcher.New(16),
		pollInterval: PollInterval,
	}
}

// OnStateChange registers an observer for every transition.
func (s *Session) OnStateChange(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start obtains a persistent device token (generated once, cached in
// SecretStore), calls the external init RPC, and schedules polling and
// expiry timers (spec §4.6). If a session is already non-idle, Start
// first performs an implicit Cancel.
func (s *Session) Start(ctx context.Context, mode Mode, deviceName string) error {
	const op = "pairing.Start"

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		s.Cancel(ctx)
		s.mu.Lock()
	}
	s.generation++
	gen := s.generation
	s.mode = mode
	s.deviceName = deviceName
	s.mu.Unlock()

	s.transition(StateInitializing)

	deviceToken, err := s.deviceToken()
	if err != nil {
		s.transition(StateFailed)
		return errs.New(errs.Storage, op, err)
	}
	if err := s.store.Put(keyDeviceName, []byte(deviceName)); err != nil {
		s.transition(StateFailed)
		return errs.New(errs.Storage, op, err)
	}

	resp, err := s.transport.Init(ctx, InitRequest{
		DeviceToken: deviceToken,
		DeviceName:  deviceName,
		Mode:        mode,
	})
	if err != nil {
		s.transition(StateFailed)
		return errs.New(errs.Network, op, err)
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil // superseded by a later Start/Cancel
	}
	s.sessionID = resp.SessionID
	s.pollStop = make(chan struct{})
	s.mu.Unlock()

	metrics.PairingsInitiated.Inc()
	metrics.PairingSessionsActive.Inc()
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	s.transition(StateWaiting)

	go s.pollLoop(ctx, gen)
	go s.expiryTimer(gen, resp.ExpiresIn)

	return nil
}

// Cancel sends a best-effort cancel RPC and transitions to Idle.
func (s *Session) Cancel(ctx context.Context) {
	s.mu.Lock()
	sessionID := s.sessionID
	alreadyIdle := s.state == StateIdle
	wasActive := s.active
	s.active = false
	s.generation++
	s.stopPollingLocked()
	s.mu.Unlock()

	if alreadyIdle {
		return
	}

	if sessionID != "" {
		_ = s.transport.Cancel(ctx, sessionID)
	}

	s.mu.Lock()
	s.state = StateIdle
	s.sessionID = ""
	s.mu.Unlock()

	if wasActive {
		metrics.PairingSessionsActive.Dec()
	}
	s.notify(StateIdle)
}

// Retry transitions any terminal state back to Initializing by calling
// Start again with the last-used mode and device name.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.IsTerminal() {
		s.mu.Unlock()
		return errs.New(errs.Unsupported, "pairing.Retry", nil)
	}
	mode, name := s.mode, s.deviceName
	s.state = StateIdle
	s.mu.Unlock()

	return s.Start(ctx, mode, name)
}

func (s *Session) stopPollingLocked() {
	if s.pollStop != nil {
		close(s.pollStop)
		s.pollStop = nil
	}
}

func (s *Session) transition(next State) {
	s.mu.Lock()
	s.state = next
	s.stageEntered = time.Now()
	s.mu.Unlock()
	s.notify(next)
}

func (s *Session) notify(state State) {
	s.mu.Lock()
	obs := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	s.dispatcher.Post(func() {
		for _, o := range obs {
			o(state)
		}
	})
}

// deviceToken returns the cached device token, generating and caching
// one (32 random bytes, hex-encoded) on first use.
func (s *Session) deviceToken() (string, error) {
	existing, ok, err := s.store.Get(keyDeviceToken)
	if err != nil {
		return "", err
	}
	if ok {
		return string(existing), nil
	}

	raw, err := s.provider.RandomBytes(32)
	if err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)
	if err := s.store.Put(keyDeviceToken, []byte(token)); err != nil {
		return "", err
	}
	return token, nil
}

// persistCredentials writes credentials atomically before the
// Completed transition is emitted (spec §4.6): if the write fails, the
// session transitions to Failed instead of Completed. It also derives
// and stores the voice-code shared key for this pairing epoch.
func (s *Session) persistCredentials(creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	if err := s.store.Put(keyCredentials, data); err != nil {
		return err
	}
	if err := s.store.Put(keyPairedAt, []byte(creds.PairedAt.UTC().Format(time.RFC3339))); err != nil {
		return err
	}

	voiceKey, err := sagecrypto.DeriveVoiceKey(s.provider, []byte(creds.PairToken), []byte(creds.PairID))
	if err != nil {
		return err
	}
	return s.store.Put(keyVoiceKey, voiceKey)
}

// classifyError maps a StatusResponse error string to a terminal state
// (spec §4.6): strings containing "expired" route to Expired,
// "declined" to Declined, else Failed.
func classifyError(errMsg string) State {
	lower := strings.ToLower(errMsg)
	switch {
	case strings.Contains(lower, "expired"):
		return StateExpired
	case strings.Contains(lower, "declined"):
		return StateDeclined
	default:
		return StateFailed
	}
}

// LoadCredentials reads back the credentials persisted by a prior
// successful pairing, if any.
func LoadCredentials(store secretstore.SecretStore) (*Credentials, bool, error) {
	data, ok, err := store.Get(keyCredentials)
	if err != nil || !ok {
		return nil, ok, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, false, errs.New(errs.Storage, "pairing.LoadCredentials", err)
	}
	return &creds, true, nil
}

// Close releases the session's dispatcher. Call when the session is no
// longer needed.
func (s *Session) Close() {
	s.dispatcher.Close()
}
