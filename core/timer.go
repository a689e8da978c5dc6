package core

import "sync/atomic"

// TimerFreq is the rate of the diagnostic clock: one tick per millisecond
const TimerFreq = 1000

var (
	clockSource func() uint32
	clockTicks  atomic.Uint32 // Used when no clock source is installed
)

// GetTime returns the current diagnostic clock in milliseconds
func GetTime() uint32 {
	if src := clockSource; src != nil {
		return src()
	}
	return clockTicks.Load()
}

// SetTime sets the fallback clock (for testing and simulation)
func SetTime(ticks uint32) {
	clockTicks.Store(ticks)
}

// SetClockSource makes GetTime read from src, typically a free-running
// hardware counter. nil falls back to the value set with SetTime.
func SetClockSource(src func() uint32) {
	clockSource = src
}
