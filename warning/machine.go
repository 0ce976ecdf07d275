package warning

import (
	"sync"
	"time"

	"github.com/allow2/offlinecore/internal/dispatcher"
	"github.com/allow2/offlinecore/internal/metrics"
)

// LevelObserver is notified when the level rises in urgency.
type LevelObserver func(level Level)

// TickObserver is notified once per second while the countdown runs,
// with the number of seconds remaining.
type TickObserver func(secondsRemaining int)

// BlockFunc is the single-use block callback. It fires exactly once per
// registration and is cleared immediately after firing.
type BlockFunc func(reason string)

// Machine is the warning/countdown state machine (spec §4.7). All
// observer delivery is posted through an internal Dispatcher so
// observers are never re-entered synchronously from within Update.
type Machine struct {
	mu sync.Mutex

	level Level

	levelObservers []LevelObserver
	tickObservers  []TickObserver
	blockFn        BlockFunc

	countdownRunning bool
	countdownSeconds int
	ticker           Ticker
	tickerFactory    func(time.Duration) Ticker
	stopCountdown    chan struct{}

	dispatcher *dispatcher.Dispatcher
}

// New creates a Machine at LevelNone with no countdown running.
func New() *Machine {
	return &Machine{
		tickerFactory: newRealTicker,
		dispatcher:    dispatcher.New(16),
	}
}

// OnLevelChange registers an observer invoked (in registration order)
// whenever the level rises in urgency.
func (m *Machine) OnLevelChange(obs LevelObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levelObservers = append(m.levelObservers, obs)
}

// OnTick registers an observer invoked once per second while the
// countdown runs.
func (m *Machine) OnTick(obs TickObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickObservers = append(m.tickObservers, obs)
}

// OnBlock registers the single-use block callback. Calling OnBlock
// again before it has fired replaces the pending callback.
func (m *Machine) OnBlock(fn BlockFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockFn = fn
}

// Level returns the current warning level.
func (m *Machine) Level() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Update recomputes the level for remaining seconds. Observers are
// notified only when the level increases in urgency (spec §4.7); a
// level may fall without notification, since notification is monotone
// one-way. When remaining enters (0, 60] and the countdown is not
// already running, a 1-Hz countdown starts. When remaining <= 0, the
// block callback fires exactly once and the countdown stops.
func (m *Machine) Update(remaining int) {
	newLevel := levelFor(remaining)

	m.mu.Lock()
	rose := newLevel > m.level
	if rose {
		m.level = newLevel
	}
	shouldStartCountdown := remaining > 0 && remaining <= UrgentThreshold && !m.countdownRunning
	shouldBlock := remaining <= 0
	m.mu.Unlock()

	if rose {
		metrics.WarningLevelChanges.WithLabelValues(newLevel.String()).Inc()
		m.notifyLevel(newLevel)
	}

	if shouldStartCountdown {
		m.startCountdown(remaining)
	}

	if shouldBlock {
		m.fireBlock("time expired")
	}
}

// Reset returns the machine to LevelNone and stops any running
// countdown, allowing the next Update to notify again even for a level
// already seen (spec §4.7 rationale).
func (m *Machine) Reset() {
	m.mu.Lock()
	m.level = LevelNone
	m.mu.Unlock()
	m.stopCountdownLocked()
}

func (m *Machine) notifyLevel(level Level) {
	m.mu.Lock()
	obs := append([]LevelObserver(nil), m.levelObservers...)
	m.mu.Unlock()

	m.dispatcher.Post(func() {
		for _, o := range obs {
			o(level)
		}
	})
}

func (m *Machine) notifyTick(seconds int) {
	m.mu.Lock()
	obs := append([]TickObserver(nil), m.tickObservers...)
	m.mu.Unlock()

	m.dispatcher.Post(func() {
		for _, o := range obs {
			o(seconds)
		}
	})
}

func (m *Machine) fireBlock(reason string) {
	m.mu.Lock()
	fn := m.blockFn
	m.blockFn = nil
	m.mu.Unlock()

	m.stopCountdownLocked()

	if fn != nil {
		m.dispatcher.Post(func() { fn(reason) })
	}
}

func (m *Machine) startCountdown(remaining int) {
	m.mu.Lock()
	if m.countdownRunning {
		m.mu.Unlock()
		return
	}
	m.countdownRunning = true
	m.countdownSeconds = remaining
	ticker := m.tickerFactory(time.Second)
	m.ticker = ticker
	stop := make(chan struct{})
	m.stopCountdown = stop
	m.mu.Unlock()

	go m.runCountdown(ticker, stop)
}

func (m *Machine) runCountdown(ticker Ticker, stop chan struct{}) {
	for {
		select {
		case <-ticker.C():
			m.mu.Lock()
			m.countdownSeconds--
			seconds := m.countdownSeconds
			m.mu.Unlock()

			m.notifyTick(seconds)

			if seconds == CountdownTick30 || seconds == CountdownTick10 {
				metrics.WarningLevelChanges.WithLabelValues(LevelUrgent.String()).Inc()
				m.notifyLevel(LevelUrgent)
			}
			if seconds <= 0 {
				m.fireBlock("time expired")
				return
			}
		case <-stop:
			return
		}
	}
}

func (m *Machine) stopCountdownLocked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.countdownRunning {
		return
	}
	m.countdownRunning = false
	if m.ticker != nil {
		m.ticker.Stop()
	}
	if m.stopCountdown != nil {
		close(m.stopCountdown)
		m.stopCountdown = nil
	}
}

// Close releases the machine's dispatcher and stops any running
// countdown. Call when the machine is no longer needed.
func (m *Machine) Close() {
	m.stopCountdownLocked()
	m.dispatcher.Close()
}
