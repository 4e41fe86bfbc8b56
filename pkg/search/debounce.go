package search

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer holds a single pending-timer slot. Each Trigger replaces the
// pending call, so only the most recent one within the quiet period runs.
type Debouncer struct {
	clock clock.Clock
	wait  time.Duration

	mu    sync.Mutex
	timer *clock.Timer
	gen   uint64
}

func NewDebouncer(c clock.Clock, wait time.Duration) *Debouncer {
	if c == nil {
		c = clock.New()
	}
	return &Debouncer{clock: c, wait: wait}
}

// Trigger schedules fn after the quiet period and reports whether a pending
// call was dropped in its favour.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	superseded := d.stopLocked()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// a timer that already fired when it was stopped still lands here
		if gen != d.gen || d.timer == nil {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
	return superseded
}

// Cancel drops the pending call, if any, and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	return d.stopLocked()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}
