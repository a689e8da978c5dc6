//go:build !tinygo

package sim

import (
	"errors"
	"sync"

	"irqblink/core"
)

// ErrEdgeUnsupported is returned for edge selections the simulated pin
// cannot detect
var ErrEdgeUnsupported = errors.New("sim: unsupported edge")

// Pin is a simulated output line
type Pin struct {
	mu      sync.Mutex
	level   core.Level
	toggles int
}

func (p *Pin) Set(level core.Level) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *Pin) Toggle() {
	p.mu.Lock()
	p.level = p.level.Invert()
	p.toggles++
	p.mu.Unlock()
}

func (p *Pin) Level() core.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Toggles returns the number of Toggle calls so far
func (p *Pin) Toggles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.toggles
}

// Button is a simulated input line with an edge-triggered pending latch
type Button struct {
	mu      sync.Mutex
	ctrl    *Controller
	edge    core.Edge
	level   core.Level
	pending bool
	clears  int
}

// NewButton creates a button wired to ctrl's button line
func NewButton(ctrl *Controller) *Button {
	b := &Button{ctrl: ctrl}
	ctrl.attach(core.IRQButton, b)
	return b
}

func (b *Button) EnableEdgeInterrupt(edge core.Edge) error {
	if edge != core.Rising && edge != core.Falling {
		return ErrEdgeUnsupported
	}
	b.mu.Lock()
	b.edge = edge
	b.mu.Unlock()
	return nil
}

func (b *Button) ClearPending() {
	b.mu.Lock()
	b.pending = false
	b.clears++
	b.mu.Unlock()
}

// Pending reports whether the edge latch is set
func (b *Button) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Clears returns the number of ClearPending calls so far
func (b *Button) Clears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clears
}

// drive moves the line to level, latching a matching edge
func (b *Button) drive(level core.Level) {
	b.mu.Lock()
	if b.level == level {
		b.mu.Unlock()
		return
	}
	b.level = level
	fire := (level == core.High && b.edge == core.Rising) ||
		(level == core.Low && b.edge == core.Falling)
	if fire {
		b.pending = true
	}
	b.mu.Unlock()

	if fire {
		b.ctrl.Raise(core.IRQButton)
	}
}

// Press drives the line high
func (b *Button) Press() {
	b.drive(core.High)
}

// Release drives the line low
func (b *Button) Release() {
	b.drive(core.Low)
}

// Click is a clean press and release
func (b *Button) Click() {
	b.Press()
	b.Release()
}

// Bounce simulates a contact that chatters: n rising edges for one press.
// There is no debouncing, so each edge is a separate button event.
func (b *Button) Bounce(n int) {
	for i := 0; i < n; i++ {
		b.Click()
	}
}
