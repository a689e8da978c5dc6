//go:build !tinygo

package core

import "sync"

// State is the saved interrupt mask on regular Go: the critical section
// nesting depth at the time of entry.
type State uintptr

// Emulated PRIMASK for host builds. A depth above zero means interrupts are
// masked; the unmask hook runs each time the outermost section exits so a
// simulated interrupt controller can deliver whatever latched meanwhile.
var (
	irqMu      sync.Mutex
	irqDepth   uintptr
	unmaskHook func()
)

// disableInterrupts masks the emulated interrupt line and returns the previous state
func disableInterrupts() State {
	irqMu.Lock()
	defer irqMu.Unlock()
	prev := irqDepth
	irqDepth++
	return State(prev)
}

// restoreInterrupts restores the emulated mask
func restoreInterrupts(state State) {
	irqMu.Lock()
	irqDepth = uintptr(state)
	hook := unmaskHook
	open := irqDepth == 0
	irqMu.Unlock()

	if open && hook != nil {
		hook()
	}
}

// haltInterrupts is a no-op on regular Go. Simulated controllers refuse
// delivery once IsHalted reports true.
func haltInterrupts() {}

// haltForever is the default halt handler on regular Go (for testing)
func haltForever() {
	panic("irqblink: halted: " + errString(HaltReason()))
}

// InterruptsMasked reports whether a critical section is active.
func InterruptsMasked() bool {
	irqMu.Lock()
	defer irqMu.Unlock()
	return irqDepth > 0
}

// SetUnmaskHook registers fn to run whenever the outermost critical section
// exits. Pass nil to remove the hook.
func SetUnmaskHook(fn func()) {
	irqMu.Lock()
	unmaskHook = fn
	irqMu.Unlock()
}

// resetInterrupts clears the emulated mask (for testing)
func resetInterrupts() {
	irqMu.Lock()
	irqDepth = 0
	irqMu.Unlock()
}
