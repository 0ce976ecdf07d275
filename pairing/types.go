// Package pairing implements PairingSession (C6): the long-poll driven
// state machine that bootstraps long-term credentials and the
// voice-code shared key on a child device (spec §4.6). The network
// transport and encrypted key-value storage are external collaborators,
// modeled here as the Transport and secretstore.SecretStore interfaces.
package pairing

import (
	"context"
	"time"
)

// State is a PairingSession lifecycle state (spec §4.6).
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateWaiting
	StateScanned
	StateAuthenticating
	StateCompleted
	StateExpired
	StateDeclined
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateWaiting:
		return "waiting"
	case StateScanned:
		return "scanned"
	case StateAuthenticating:
		return "authenticating"
	case StateCompleted:
		return "completed"
	case StateExpired:
		return "expired"
	case StateDeclined:
		return "declined"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// IsTerminal reports whether s is one of the four terminal states.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateExpired, StateDeclined, StateFailed:
		return true
	default:
		return false
	}
}

// Mode is the pairing presentation mode.
type Mode string

const (
	ModeQR  Mode = "qr"
	ModePIN Mode = "pin"
)

// Child is the minimal identity a pairing's status response may carry
// for a paired account's children (used by CLI tooling and tests to
// label a child_id; not itself invariant-bearing).
type Child struct {
	ID   uint64
	Name string
}

// InitRequest is POST /pair/init's request body (spec §6).
type InitRequest struct {
	DeviceToken string
	DeviceName  string
	Mode        Mode
}

// InitResponse is POST /pair/init's response body.
type InitResponse struct {
	SessionID string
	ExpiresIn time.Duration
	QRPayload string
	PinCode   string
}

// StatusResponse is GET /pair/status's response body.
type StatusResponse struct {
	Completed bool
	Success   bool
	Scanned   bool
	UserID    string
	PairID    string
	PairToken string
	Children  []Child
	Error     string
}

// Transport carries the pairing init/poll/cancel RPCs (spec §4.6.1,
// §6). Supplied externally; the core never constructs a concrete
// HTTP client.
type Transport interface {
	Init(ctx context.Context, req InitRequest) (InitResponse, error)
	Status(ctx context.Context, sessionID string) (StatusResponse, error)
	Cancel(ctx context.Context, sessionID string) error
}

// Credentials are persisted encrypted in SecretStore under
// credentialsKey (spec §3); cleared only on a remote 401, never by
// direct user action.
type Credentials struct {
	UserID    string
	PairID    string
	PairToken string
	Children  []Child
	PairedAt  time.Time
}

// SecretStore keys used by this package (spec §6).
const (
	keyCredentials = "allow2.credentials"
	keyDeviceToken = "allow2.device_token"
	keyDeviceName  = "allow2.device_name"
	keyPairedAt    = "allow2.paired_at"
	keyVoiceKey    = "allow2.voice_key"
)

// PollInterval is the status poll cadence (spec §6).
const PollInterval = 2 * time.Second
