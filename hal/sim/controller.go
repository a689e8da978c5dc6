//go:build !tinygo

// Package sim is a host-side board for the blinker: pins, a countdown timer
// and an interrupt controller that deliver interrupts through the emulated
// critical section in package core.
package sim

import (
	"sync"

	"irqblink/core"
)

// DefaultStormLimit caps back-to-back redeliveries of one source in a single
// delivery pass. A handler that never clears its latch would otherwise spin
// forever, as it would on hardware.
const DefaultStormLimit = 64

// Dispatcher runs the handler for an interrupt source. *core.Shared is one.
type Dispatcher interface {
	Handle(irq core.IRQ)
}

// latch is the peripheral side of an interrupt line
type latch interface {
	Pending() bool
}

// Controller simulates the NVIC for the two blinker sources. Sources are
// level sensitive: after a handler returns, a source whose peripheral latch
// is still set is pended again. When several sources are pending the lowest
// IRQ number runs first, and handlers never preempt each other.
type Controller struct {
	mu         sync.Mutex
	enabled    [core.NumIRQ]bool
	pending    [core.NumIRQ]bool
	sources    [core.NumIRQ]latch
	dispatch   Dispatcher
	delivering bool
	delivered  []core.IRQ
	stormLimit int
	storms     int
}

// NewController creates a controller and hooks it to the emulated critical
// section, so pending interrupts are taken as soon as the outermost section
// exits.
func NewController(dispatch Dispatcher) *Controller {
	c := &Controller{
		dispatch:   dispatch,
		stormLimit: DefaultStormLimit,
	}
	core.SetUnmaskHook(c.Deliver)
	return c
}

// Close detaches the controller from the critical section emulation
func (c *Controller) Close() {
	core.SetUnmaskHook(nil)
}

// SetStormLimit changes the redelivery cap
func (c *Controller) SetStormLimit(n int) {
	c.mu.Lock()
	c.stormLimit = n
	c.mu.Unlock()
}

func (c *Controller) attach(irq core.IRQ, src latch) {
	c.mu.Lock()
	c.sources[irq] = src
	c.mu.Unlock()
}

// Unmask enables delivery for irq and takes it at once if already pending
func (c *Controller) Unmask(irq core.IRQ) {
	c.mu.Lock()
	c.enabled[irq] = true
	c.mu.Unlock()
	c.Deliver()
}

// Mask disables delivery for irq. Its pending latch is kept.
func (c *Controller) Mask(irq core.IRQ) {
	c.mu.Lock()
	c.enabled[irq] = false
	c.mu.Unlock()
}

// Raise pends irq and delivers it unless interrupts are masked
func (c *Controller) Raise(irq core.IRQ) {
	c.mu.Lock()
	c.pending[irq] = true
	c.mu.Unlock()
	c.Deliver()
}

// IsPending reports whether irq is latched at the controller
func (c *Controller) IsPending(irq core.IRQ) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[irq]
}

// Deliver runs handlers for every enabled pending source, in priority
// order, until none is left. It does nothing inside a critical section,
// while another delivery is running, or once the firmware has halted.
func (c *Controller) Deliver() {
	if core.InterruptsMasked() || core.IsHalted() {
		return
	}

	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	c.mu.Unlock()

	var runs [core.NumIRQ]int
	for {
		irq, ok := c.next()
		if !ok || core.IsHalted() {
			break
		}
		c.dispatch.Handle(irq)

		c.mu.Lock()
		if src := c.sources[irq]; src != nil && src.Pending() {
			c.pending[irq] = true
			runs[irq]++
			if runs[irq] >= c.stormLimit {
				// Still pending; the next delivery pass picks it up
				c.storms++
				c.mu.Unlock()
				break
			}
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.delivering = false
	c.mu.Unlock()
}

// next clears and returns the highest priority deliverable source
func (c *Controller) next() (core.IRQ, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for irq := core.IRQ(0); irq < core.NumIRQ; irq++ {
		if c.enabled[irq] && c.pending[irq] {
			c.pending[irq] = false
			c.delivered = append(c.delivered, irq)
			return irq, true
		}
	}
	return 0, false
}

// Delivered returns the handler invocations so far, in order
func (c *Controller) Delivered() []core.IRQ {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.IRQ, len(c.delivered))
	copy(out, c.delivered)
	return out
}

// DeliveredCount returns the number of handler invocations so far
func (c *Controller) DeliveredCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.delivered)
}

// Storms returns how many delivery passes hit the redelivery cap
func (c *Controller) Storms() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storms
}
