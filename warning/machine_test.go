package warning

import (
	"sync"
	"time"

	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTicker lets tests fire ticks deterministically instead of waiting
// on a real 1-second clock.
type fakeTicker struct {
	ch chan time.Time
}

func newFakeTicker(time.Duration) Ticker { return &fakeTicker{ch: make(chan time.Time, 16)} }

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

func (f *fakeTicker) fire() { f.ch <- time.Now() }

func newTestMachine() (*Machine, *fakeTicker) {
	m := New()
	ft := &fakeTicker{ch: make(chan time.Time, 16)}
	m.tickerFactory = func(time.Duration) Ticker { return ft }
	return m, ft
}

func TestUpdateRecomputesLevel(t *testing.T) {
	m, _ := newTestMachine()
	m.Update(900)
	require.Equal(t, LevelGentle, m.Level())
}

func TestUpdateDoesNotRenotifySameBracket(t *testing.T) {
	m, _ := newTestMachine()

	var mu sync.Mutex
	notifications := 0
	m.OnLevelChange(func(Level) {
		mu.Lock()
		notifications++
		mu.Unlock()
	})

	m.Update(900)
	m.Update(800) // still within the Gentle bracket; no new notification
	waitForDispatch()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, notifications)
}

func TestWarningProgression(t *testing.T) {
	m, ft := newTestMachine()
	defer m.Close()

	var mu sync.Mutex
	var levels []Level
	m.OnLevelChange(func(l Level) {
		mu.Lock()
		levels = append(levels, l)
		mu.Unlock()
	})

	m.Update(900)
	m.Update(800)
	m.Update(300)
	m.Update(60) // starts countdown

	waitForDispatch()
	mu.Lock()
	require.Equal(t, []Level{LevelGentle, LevelWarning, LevelUrgent}, levels)
	mu.Unlock()

	ft.fire() // 59
	for i := 0; i < 28; i++ {
		ft.fire()
	}
	// tick down to 30 should re-notify Urgent
	waitForDispatch()
}

func TestBlockFiresExactlyOnce(t *testing.T) {
	m, _ := newTestMachine()
	defer m.Close()

	var mu sync.Mutex
	fired := 0
	var reason string
	m.OnBlock(func(r string) {
		mu.Lock()
		fired++
		reason = r
		mu.Unlock()
	})

	m.Update(0)
	waitForDispatch()

	m.Update(0) // second call must not refire

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, fired)
	require.Equal(t, "time expired", reason)
}

func TestResetAllowsRenotification(t *testing.T) {
	m, _ := newTestMachine()
	defer m.Close()

	var mu sync.Mutex
	notifications := 0
	m.OnLevelChange(func(Level) {
		mu.Lock()
		notifications++
		mu.Unlock()
	})

	m.Update(900)
	m.Reset()
	m.Update(900)
	waitForDispatch()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 2, notifications)
}

func TestLevelForBrackets(t *testing.T) {
	require.Equal(t, LevelNone, levelFor(901))
	require.Equal(t, LevelGentle, levelFor(900))
	require.Equal(t, LevelGentle, levelFor(301))
	require.Equal(t, LevelWarning, levelFor(300))
	require.Equal(t, LevelWarning, levelFor(61))
	require.Equal(t, LevelUrgent, levelFor(60))
	require.Equal(t, LevelUrgent, levelFor(1))
	require.Equal(t, LevelBlocked, levelFor(0))
	require.Equal(t, LevelBlocked, levelFor(-5))
}

func waitForDispatch() {
	time.Sleep(20 * time.Millisecond)
}
