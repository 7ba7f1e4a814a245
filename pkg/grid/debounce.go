package grid

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a save confirmation is shown.
const DefaultDebounce = 3 * time.Second

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer holds at most one pending timer. Each Trigger cancels the
// pending one and reschedules, so a burst yields a single call.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	after   AfterFunc
	pending Timer
	seq     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer using the real clock. A non-positive
// delay selects DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	return NewDebouncerWithClock(delay, realAfterFunc)
}

// NewDebouncerWithClock is NewDebouncer with an injectable scheduler.
func NewDebouncerWithClock(delay time.Duration, after AfterFunc) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if after == nil {
		after = realAfterFunc
	}
	return &Debouncer{delay: delay, after: after}
}

// Trigger replaces any pending call with fn. It is a no-op after Stop.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = d.after(d.delay, func() {
		d.mu.Lock()
		// a Stop or newer Trigger that raced the timer wins
		current := !d.stopped && d.seq == seq
		if current {
			d.pending = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the pending call, if any, and keeps the debouncer usable.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.seq++
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending call and disables further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
