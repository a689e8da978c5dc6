package core

// CS is a critical section token. Holding a valid one means interrupts are
// masked on this core; only Critical and EnterCritical can produce one.
type CS struct {
	valid bool
}

// Critical runs fn with interrupts masked. Interrupts that fire while fn runs
// stay pending and are taken as soon as the section exits.
//
// fn must not block and must not enter another handler.
func Critical(fn func(cs CS)) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	fn(CS{valid: true})
}

// EnterCritical masks interrupts and returns a token plus the state to hand
// back to ExitCritical. Interrupt handlers use this form instead of Critical
// so no closure is allocated in interrupt context.
func EnterCritical() (CS, State) {
	state := disableInterrupts()
	return CS{valid: true}, state
}

// ExitCritical restores the interrupt state saved by EnterCritical
func ExitCritical(state State) {
	restoreInterrupts(state)
}

// check faults on a token that was not minted by a critical section
func (cs CS) check() bool {
	if !cs.valid {
		Fault(ErrNoCriticalSection)
		return false
	}
	return true
}
