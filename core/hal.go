package core

// Level is the logic level of a digital line
type Level uint8

const (
	Low Level = iota
	High
)

// Invert returns the opposite level
func (l Level) Invert() Level {
	if l == High {
		return Low
	}
	return High
}

// Edge selects which transition raises an input interrupt
type Edge uint8

const (
	Rising Edge = iota + 1
	Falling
)

// IRQ identifies one interrupt source at the controller
type IRQ uint8

const (
	IRQTimer IRQ = iota
	IRQButton
	NumIRQ
)

func (i IRQ) String() string {
	switch i {
	case IRQTimer:
		return "timer"
	case IRQButton:
		return "button"
	default:
		return "irq" + itoa(int(i))
	}
}

// OutputPin is exclusive control of one digital output line.
// Platform-specific implementations handle actual hardware control.
type OutputPin interface {
	// Set drives the line to level
	Set(level Level)

	// Toggle inverts the line
	Toggle()

	// Level reads back the driven level
	Level() Level
}

// InputPin is exclusive control of one digital input line with an edge
// interrupt.
type InputPin interface {
	// EnableEdgeInterrupt arms the pin's interrupt for edge transitions.
	// The interrupt stays masked at the controller until Unmask.
	EnableEdgeInterrupt(edge Edge) error

	// ClearPending clears the pin's pending-interrupt latch. Clearing an
	// already clear latch has no effect.
	ClearPending()
}

// CountdownTimer is one periodic hardware countdown
type CountdownTimer interface {
	// Start (re)programs the period in milliseconds and restarts the
	// countdown from the full period.
	Start(ms uint32)

	// EnableExpiryInterrupt makes expiry raise the timer interrupt
	EnableExpiryInterrupt()

	// ClearPending clears the expiry latch. Idempotent.
	ClearPending()
}

// InterruptController gates interrupt sources at the core
type InterruptController interface {
	Unmask(irq IRQ)
}

// Peripherals is the set of handles the idle loop builds at boot
type Peripherals struct {
	LED    OutputPin
	Button InputPin
	Timer  CountdownTimer
	NVIC   InterruptController
}

// Board is the hardware abstraction the idle loop starts from
type Board interface {
	// TakePeripherals hands out the peripheral set. It succeeds at most
	// once per program lifetime.
	TakePeripherals() (*Peripherals, bool)

	// WaitForInterrupt suspends the core until any unmasked interrupt
	// fires. Must be called outside any critical section.
	WaitForInterrupt()
}
