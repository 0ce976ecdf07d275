// Package dispatcher provides a single-goroutine serialized-callback
// queue standing in for "the host's UI thread" (spec §5). Timers, RPC
// completions, and observer notifications across pairing and warning
// post through one Dispatcher so core state never needs its own lock
// for callback ordering — only the ledgers, which may be read
// concurrently from outside the sequence, use their own mutexes.
//
// Generalized from the teacher's single-goroutine ticking cleanup loop
// (core/session/manager.go's runCleanup) into a generic serialized
// work queue.
package dispatcher

import "sync"

// Dispatcher runs posted functions one at a time, in post order, on a
// single background goroutine.
type Dispatcher struct {
	mu      sync.Mutex
	queue   chan func()
	stopped chan struct{}
	once    sync.Once
}

// New starts a Dispatcher with the given queue depth. A depth of 0
// blocks Post until the worker goroutine drains the previous item.
func New(queueDepth int) *Dispatcher {
	d := &Dispatcher{
		queue:   make(chan func(), queueDepth),
		stopped: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	for {
		select {
		case fn, ok := <-d.queue:
			if !ok {
				return
			}
			fn()
		case <-d.stopped:
			return
		}
	}
}

// Post enqueues fn to run on the dispatcher goroutine. Post is safe to
// call from any goroutine, including from within a function already
// running on the dispatcher (it will run after the current callback
// returns, never synchronously — matching the "no observer may
// re-enter synchronously" design note).
func (d *Dispatcher) Post(fn func()) {
	select {
	case d.queue <- fn:
	case <-d.stopped:
	}
}

// Close stops the dispatcher. Pending queued callbacks are dropped.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.stopped) })
}
