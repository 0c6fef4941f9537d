package core

import (
	"sync"
	"time"
)

// DefaultSaveDelay is the debounce window for scheduled saves.
const DefaultSaveDelay = 500 * time.Millisecond

// Debouncer runs fn once after a quiet period.
//
// At most one timer is pending: Trigger cancels and restarts it. Each arm
// carries a generation number, so a timer that already fired but lost the race
// against Cancel, Flush or a newer Trigger becomes a no-op.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	gen     uint64
	stopped bool
	running sync.WaitGroup
}

// NewDebouncer creates a debouncer that calls fn delay after the last Trigger.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger arms the timer, replacing any pending one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopTimerLocked()
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the pending timer. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	return d.stopTimerLocked()
}

// Flush cancels the pending timer and runs fn synchronously.
func (d *Debouncer) Flush() {
	d.Cancel()
	d.fn()
}

// Pending reports whether a timer is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending timer, refuses further triggers, and waits up to
// timeout for an in-flight fn to return. It reports whether pending work was
// dropped.
func (d *Debouncer) Stop(timeout time.Duration) bool {
	d.mu.Lock()
	d.stopped = true
	d.gen++
	dropped := d.stopTimerLocked()
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.running.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
	return dropped
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn()
}

func (d *Debouncer) stopTimerLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}
