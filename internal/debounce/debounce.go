// Package debounce coalesces bursts of triggers into one trailing call.
//
// Used to batch auto-save persistence behind rapid answer edits. It is an
// optimization only: the work being debounced (reselection, aggregation,
// saving) is idempotent, so correctness never depends on the window.
package debounce

import (
	"sync"
	"time"
)

// Debouncer invokes fn once per burst of Trigger calls, after the window of
// quiet. Safe for concurrent use.
type Debouncer struct {
	window time.Duration
	fn     func()

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a debouncer. A zero or negative window makes Trigger call fn
// synchronously (useful in tests and for callers that opt out).
func New(window time.Duration, fn func()) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Trigger schedules fn after the quiet window, resetting the window if a
// burst is in flight.
func (d *Debouncer) Trigger() {
	if d.window <= 0 {
		d.fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fn)
}

// Flush runs any pending call now and cancels the timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil && d.timer.Stop()
	d.timer = nil
	d.mu.Unlock()

	if pending {
		d.fn()
	}
}

// Stop cancels any pending call without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
