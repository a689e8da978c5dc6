//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved PRIMASK value
type State = interrupt.State

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state State) {
	interrupt.Restore(state)
}

// haltInterrupts masks interrupts for good; the state is never restored
func haltInterrupts() {
	interrupt.Disable()
}

// haltForever parks the core after a fault
func haltForever() {
	for {
	}
}

func resetInterrupts() {}
