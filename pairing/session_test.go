package pairing

import (
	"context"
	"sync"
	"testing"
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/secretstore"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a scriptable Transport for tests: Status returns
// responses from a queue, advancing one per call (repeating the last).
type fakeTransport struct {
	mu         sync.Mutex
	initResp   InitResponse
	initErr    error
	statusResp []StatusResponse
	statusIdx  int
	cancelled  []string
}

func (f *fakeTransport) Init(ctx context.Context, req InitRequest) (InitResponse, error) {
	return f.initResp, f.initErr
}

func (f *fakeTransport) Status(ctx context.Context, sessionID string) (StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statusResp) == 0 {
		return StatusResponse{}, nil
	}
	idx := f.statusIdx
	if idx >= len(f.statusResp) {
		idx = len(f.statusResp) - 1
	} else {
		f.statusIdx++
	}
	return f.statusResp[idx], nil
}

func (f *fakeTransport) Cancel(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, sessionID)
	return nil
}

func newTestSession(transport Transport) (*Session, secretstore.SecretStore) {
	store := secretstore.NewMemory()
	provider := sagecrypto.NewProvider()
	s := New(transport, store, provider)
	s.pollInterval = 10 * time.Millisecond
	return s, store
}

func waitForState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s, got %s", want, s.State())
}

func TestStartTransitionsToWaiting(t *testing.T) {
	transport := &fakeTransport{
		initResp: InitResponse{SessionID: "sess1", ExpiresIn: time.Minute},
	}
	s, _ := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateWaiting)
}

func TestDeviceTokenCachedAcrossStarts(t *testing.T) {
	transport := &fakeTransport{initResp: InitResponse{SessionID: "sess1", ExpiresIn: time.Minute}}
	s, store := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateWaiting)

	tok1, ok, err := store.Get(keyDeviceToken)
	require.NoError(t, err)
	require.True(t, ok)

	s.Cancel(context.Background())
	waitForState(t, s, StateIdle)

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateWaiting)

	tok2, _, err := store.Get(keyDeviceToken)
	require.NoError(t, err)
	require.Equal(t, tok1, tok2)
}

func TestSuccessfulCompletionPersistsCredentials(t *testing.T) {
	transport := &fakeTransport{
		initResp: InitResponse{SessionID: "sess1", ExpiresIn: time.Minute},
		statusResp: []StatusResponse{
			{Completed: false},
			{Completed: true, Success: true, UserID: "u1", PairID: "p1", PairToken: "tok"},
		},
	}
	s, store := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateCompleted)

	creds, ok, err := LoadCredentials(store)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "u1", creds.UserID)
	require.Equal(t, "p1", creds.PairID)

	_, ok, err = store.Get(keyVoiceKey)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFailedResponseRoutesByErrorString(t *testing.T) {
	cases := []struct {
		errMsg string
		want   State
	}{
		{"the session has expired", StateExpired},
		{"user declined pairing", StateDeclined},
		{"something else broke", StateFailed},
	}

	for _, tc := range cases {
		transport := &fakeTransport{
			initResp: InitResponse{SessionID: "sess1", ExpiresIn: time.Minute},
			statusResp: []StatusResponse{
				{Completed: true, Success: false, Error: tc.errMsg},
			},
		}
		s, _ := newTestSession(transport)

		require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
		waitForState(t, s, tc.want)
		s.Close()
	}
}

func TestScannedTransitionInQRMode(t *testing.T) {
	transport := &fakeTransport{
		initResp: InitResponse{SessionID: "sess1", ExpiresIn: time.Minute},
		statusResp: []StatusResponse{
			{Scanned: true},
		},
	}
	s, _ := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateScanned)
}

func TestExpiryTimerFiresWhenNoTerminalReached(t *testing.T) {
	transport := &fakeTransport{
		initResp: InitResponse{SessionID: "sess1", ExpiresIn: 30 * time.Millisecond},
	}
	s, _ := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateExpired)
}

func TestCancelWhileNonIdleSendsCancelRPC(t *testing.T) {
	transport := &fakeTransport{initResp: InitResponse{SessionID: "sess1", ExpiresIn: time.Minute}}
	s, _ := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateWaiting)

	s.Cancel(context.Background())
	waitForState(t, s, StateIdle)

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Equal(t, []string{"sess1"}, transport.cancelled)
}

func TestStartWhileNonIdlePerformsImplicitCancel(t *testing.T) {
	transport := &fakeTransport{initResp: InitResponse{SessionID: "sess1", ExpiresIn: time.Minute}}
	s, _ := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateWaiting)

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateWaiting)

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.NotEmpty(t, transport.cancelled)
}

func TestRetryFromTerminalState(t *testing.T) {
	transport := &fakeTransport{
		initResp: InitResponse{SessionID: "sess1", ExpiresIn: 20 * time.Millisecond},
	}
	s, _ := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateExpired)

	require.NoError(t, s.Retry(context.Background()))
	waitForState(t, s, StateExpired)
}

func TestRetryFromNonTerminalFails(t *testing.T) {
	transport := &fakeTransport{initResp: InitResponse{SessionID: "sess1", ExpiresIn: time.Minute}}
	s, _ := newTestSession(transport)
	defer s.Close()

	require.NoError(t, s.Start(context.Background(), ModeQR, "child-phone"))
	waitForState(t, s, StateWaiting)

	err := s.Retry(context.Background())
	require.Error(t, err)
}
