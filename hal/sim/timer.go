//go:build !tinygo

package sim

import (
	"sync"

	"irqblink/core"
)

// Timer is a simulated periodic countdown with a millisecond resolution.
// It reloads itself on expiry, like a free-running hardware countdown.
type Timer struct {
	mu         sync.Mutex
	ctrl       *Controller
	period     uint32
	remaining  uint32
	running    bool
	irqEnabled bool
	pending    bool
	clears     int
	starts     []uint32
}

// NewTimer creates a timer wired to ctrl's timer line
func NewTimer(ctrl *Controller) *Timer {
	t := &Timer{ctrl: ctrl}
	ctrl.attach(core.IRQTimer, t)
	return t
}

func (t *Timer) Start(ms uint32) {
	t.mu.Lock()
	t.period = ms
	t.remaining = ms
	t.running = ms > 0
	t.starts = append(t.starts, ms)
	t.mu.Unlock()
}

func (t *Timer) EnableExpiryInterrupt() {
	t.mu.Lock()
	t.irqEnabled = true
	t.mu.Unlock()
}

func (t *Timer) ClearPending() {
	t.mu.Lock()
	t.pending = false
	t.clears++
	t.mu.Unlock()
}

// Pending reports whether the expiry latch is set
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Period returns the programmed period in milliseconds
func (t *Timer) Period() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// Remaining returns the milliseconds left in the current period
func (t *Timer) Remaining() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Starts returns every period passed to Start, in order
func (t *Timer) Starts() []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]uint32, len(t.starts))
	copy(out, t.starts)
	return out
}

// Clears returns the number of ClearPending calls so far
func (t *Timer) Clears() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clears
}

// Tick advances the countdown by one millisecond
func (t *Timer) Tick() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.remaining--
	if t.remaining > 0 {
		t.mu.Unlock()
		return
	}
	t.remaining = t.period
	t.mu.Unlock()
	t.Expire()
}

// Expire latches an expiry now, without waiting for the countdown
func (t *Timer) Expire() {
	t.mu.Lock()
	t.pending = true
	raise := t.irqEnabled
	t.mu.Unlock()

	if raise {
		t.ctrl.Raise(core.IRQTimer)
	}
}
