// Package debounce provides a timer-based debouncer: schedule on event,
// cancel the prior timer on a new event, fire after a quiet period. It is
// the primitive behind collapsing rapid filter keystrokes into one fetch.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of Trigger calls into a single callback
// invocation once no new trigger has arrived for the configured delay.
// Only the most recent callback survives a burst.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the quiet period, cancelling any
// previously scheduled callback. fn runs on the timer goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending callback. It does not wait for a callback that
// has already started running.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
