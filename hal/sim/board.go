//go:build !tinygo

package sim

import (
	"slices"
	"sync"

	"irqblink/core"
)

// DefaultMaxWait bounds one WaitForInterrupt call in simulated milliseconds
const DefaultMaxWait = 10000

// Board is a simulated blinker board. Time only moves inside
// WaitForInterrupt and Advance, one millisecond at a time.
type Board struct {
	Ctrl   *Controller
	LED    *Pin
	Button *Button
	Timer  *Timer

	mu      sync.Mutex
	taken   bool
	now     uint32
	presses []uint32 // scheduled press times, sorted
	maxWait uint32
}

// NewBoard creates a board whose interrupts are handled by dispatch
func NewBoard(dispatch Dispatcher) *Board {
	ctrl := NewController(dispatch)
	return &Board{
		Ctrl:    ctrl,
		LED:     &Pin{},
		Button:  NewButton(ctrl),
		Timer:   NewTimer(ctrl),
		maxWait: DefaultMaxWait,
	}
}

// Close detaches the board's controller
func (b *Board) Close() {
	b.Ctrl.Close()
}

func (b *Board) TakePeripherals() (*core.Peripherals, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.taken {
		return nil, false
	}
	b.taken = true
	return &core.Peripherals{
		LED:    b.LED,
		Button: b.Button,
		Timer:  b.Timer,
		NVIC:   b.Ctrl,
	}, true
}

// Now returns the simulated clock in milliseconds
func (b *Board) Now() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now
}

// SchedulePress queues a button click at the given simulated time
func (b *Board) SchedulePress(at uint32) {
	b.mu.Lock()
	b.presses = append(b.presses, at)
	slices.Sort(b.presses)
	b.mu.Unlock()
}

// SetMaxWait bounds how long WaitForInterrupt may advance the clock
func (b *Board) SetMaxWait(ms uint32) {
	b.mu.Lock()
	b.maxWait = ms
	b.mu.Unlock()
}

// WaitForInterrupt advances simulated time until at least one handler has
// run, or until the wait bound is reached.
func (b *Board) WaitForInterrupt() {
	start := b.Ctrl.DeliveredCount()
	b.mu.Lock()
	limit := b.maxWait
	b.mu.Unlock()

	for i := uint32(0); i < limit; i++ {
		b.tick()
		if b.Ctrl.DeliveredCount() != start || core.IsHalted() {
			return
		}
	}
}

// Advance moves simulated time forward by ms, firing scheduled presses and
// timer expiries on the way
func (b *Board) Advance(ms uint32) {
	for i := uint32(0); i < ms; i++ {
		b.tick()
	}
}

func (b *Board) tick() {
	b.mu.Lock()
	b.now++
	now := b.now
	clicks := 0
	for len(b.presses) > 0 && b.presses[0] <= now {
		b.presses = b.presses[1:]
		clicks++
	}
	b.mu.Unlock()

	core.SetTime(now)
	b.Timer.Tick()
	for i := 0; i < clicks; i++ {
		b.Button.Click()
	}
}
