// Package debounce delays an action until its input has been quiet for a
// fixed period.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs only the last triggered function, delay after the trigger
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

// New returns a debouncer with the given delay
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay is the configured quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn, replacing anything still pending
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while Trigger or Stop held the lock is stale
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Stop cancels the pending function, if any. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// Pending reports whether a function is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
