package grid

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_BurstFiresOnce(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncerWithClock(time.Second, clock.AfterFunc)
	var calls int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	}
	assert.True(t, d.Pending())
	assert.Equal(t, 5, clock.Scheduled())
	assert.Equal(t, 1, clock.Fire())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, d.Pending())
}

func TestDebouncer_StaleTimerIgnored(t *testing.T) {
	// a timer that already started running when Trigger replaced it must not call through
	var fns []func()
	after := func(_ time.Duration, f func()) Timer {
		fns = append(fns, f)
		return time.NewTimer(time.Hour)
	}
	d := NewDebouncerWithClock(time.Second, after)
	var first, second int32
	d.Trigger(func() { atomic.AddInt32(&first, 1) })
	d.Trigger(func() { atomic.AddInt32(&second, 1) })

	fns[0]()
	fns[1]()
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
	d.Stop()
}

func TestDebouncer_StopDisables(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncerWithClock(time.Second, clock.AfterFunc)
	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	clock.Fire()
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, clock.Scheduled())
}

func TestDebouncer_CancelKeepsUsable(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncerWithClock(time.Second, clock.AfterFunc)
	var calls int32
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Cancel()
	assert.Equal(t, 0, clock.Fire())
	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	assert.Equal(t, 1, clock.Fire())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncer_RealClock(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()
	done := make(chan struct{}, 2)
	d.Trigger(func() { done <- struct{}{} })
	d.Trigger(func() { done <- struct{}{} })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
	select {
	case <-done:
		t.Fatal("burst fired more than once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0)
	assert.Equal(t, DefaultDebounce, d.delay)
}
