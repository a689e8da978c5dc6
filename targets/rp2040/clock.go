//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"irqblink/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x24 // Raw timer high word, no latching
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word, no latching
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// InitClock makes the core diagnostic clock read the hardware timer.
// The RP2040 has a 64-bit microsecond timer at 1MHz.
func InitClock() {
	core.SetClockSource(GetMillis)
}

// GetHardwareUptime reads the full 64-bit RP2040 hardware timer
func GetHardwareUptime() uint64 {
	// Must read high first, then low, then high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		// If high didn't change, we got a consistent reading
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// GetMillis returns milliseconds since boot, wrapping at 32 bits
func GetMillis() uint32 {
	return uint32(GetHardwareUptime() / 1000)
}
