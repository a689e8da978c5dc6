//go:build rp2040

package main

import (
	"device/arm"
	"device/rp"
	"machine"
	"runtime/volatile"
	"unsafe"

	"irqblink/core"
)

// GPIOButton is an InputPin on an IO_BANK0 pin with an edge interrupt
type GPIOButton struct {
	pin machine.Pin
}

// NewGPIOButton configures pin as an input with the given pull
func NewGPIOButton(pin machine.Pin, pull string) *GPIOButton {
	mode := machine.PinInputPulldown
	switch pull {
	case "up":
		mode = machine.PinInputPullup
	case "none":
		mode = machine.PinInput
	}
	pin.Configure(machine.PinConfig{Mode: mode})
	return &GPIOButton{pin: pin}
}

// EnableEdgeInterrupt registers the button handler for edge. machine
// enables IO_IRQ_BANK0 at the NVIC as a side effect, so the line is masked
// again until the controller unmasks it.
func (b *GPIOButton) EnableEdgeInterrupt(edge core.Edge) error {
	change := machine.PinRising
	if edge == core.Falling {
		change = machine.PinFalling
	}
	err := b.pin.SetInterrupt(change, handleButton)
	arm.DisableIRQ(rp.IRQ_IO_IRQ_BANK0)
	return err
}

// ClearPending acknowledges the pin's edge latches in IO_BANK0 INTR.
// Each INTR register covers 8 pins, 4 bits per pin: level low, level high,
// edge low, edge high.
func (b *GPIOButton) ClearPending() {
	pin := uint32(b.pin)
	reg := (*volatile.Register32)(unsafe.Pointer(uintptr(unsafe.Pointer(&rp.IO_BANK0.INTR0)) + uintptr(pin/8)*4))
	shift := (pin % 8) * 4
	reg.Set(0b1100 << shift) // write-1-to-clear both edge bits
}

// Unmask enables the NVIC line
func (b *GPIOButton) Unmask() {
	arm.EnableIRQ(rp.IRQ_IO_IRQ_BANK0)
}

func handleButton(machine.Pin) {
	shared.OnButtonEdge()
}
