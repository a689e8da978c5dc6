package core

import (
	"errors"
	"sync/atomic"
)

// Fatal conditions. None of them is recoverable: each one ends in Fault.
var (
	ErrPeripheralsTaken  = errors.New("peripherals already taken")
	ErrCellEmpty         = errors.New("shared cell borrowed before install")
	ErrCellInstalled     = errors.New("shared cell installed twice")
	ErrNoCriticalSection = errors.New("shared cell accessed without critical section")
	ErrAlreadyConfigured = errors.New("idle loop already configured")
)

var (
	halted      uint32 // atomic bool
	haltReason  error
	haltHandler = haltForever
)

// Fault moves the firmware into its terminal halted state. Interrupts are
// masked for good, the reason and the trace ring go out on the diagnostic
// sink, and the halt handler takes over. Shared state may be inconsistent
// at this point, so nothing tries to resume.
func Fault(reason error) {
	haltInterrupts()
	if !atomic.CompareAndSwapUint32(&halted, 0, 1) {
		// Already halted; only reachable when a halt handler returned
		return
	}
	haltReason = reason
	FlushDiagnostics()
	RecordEvent(EvtFault, 0)
	InfoString(MsgFault, errString(reason))
	DumpTrace()
	FlushDiagnostics()
	haltHandler()
}

// IsHalted returns true once Fault has run
func IsHalted() bool {
	return atomic.LoadUint32(&halted) != 0
}

// HaltReason returns the error that halted the firmware, or nil
func HaltReason() error {
	if !IsHalted() {
		return nil
	}
	return haltReason
}

// SetHaltHandler replaces what runs after a fault has been reported.
// Targets may install a watchdog-driven reset; tests install a recorder.
// A handler that returns leaves the firmware halted: handlers stay inert.
func SetHaltHandler(handler func()) {
	if handler == nil {
		handler = haltForever
	}
	haltHandler = handler
}

// ResetFirmwareState clears the halted state, the diagnostic and trace
// rings and the clock (for testing and host simulation only)
func ResetFirmwareState() {
	atomic.StoreUint32(&halted, 0)
	haltReason = nil
	haltHandler = haltForever
	resetInterrupts()
	resetDiagnostics()
	ClearTrace()
	SetClockSource(nil)
	SetTime(0)
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
