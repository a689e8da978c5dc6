//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"irqblink/core"

	"tinygo.org/x/drivers/ws2812"
)

// GPIOLED is an OutputPin on a plain GPIO
type GPIOLED struct {
	pin   machine.Pin
	level core.Level
}

// NewGPIOLED configures pin as an output, driven low
func NewGPIOLED(pin machine.Pin) *GPIOLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return &GPIOLED{pin: pin}
}

func (l *GPIOLED) Set(level core.Level) {
	l.level = level
	l.pin.Set(level == core.High)
}

func (l *GPIOLED) Toggle() {
	l.Set(l.level.Invert())
}

func (l *GPIOLED) Level() core.Level {
	return l.level
}

// NeoPixelLED is an OutputPin on a single WS2812. High is a dim white so
// the LED is visible without dazzling.
type NeoPixelLED struct {
	dev    ws2812.Device
	level  core.Level
	pixels [1]color.RGBA // preallocated, Set runs in interrupt context
}

var neoPixelOn = color.RGBA{R: 0x20, G: 0x20, B: 0x20}

// NewNeoPixelLED configures pin to drive one WS2812, switched off
func NewNeoPixelLED(pin machine.Pin) *NeoPixelLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l := &NeoPixelLED{dev: ws2812.New(pin)}
	l.Set(core.Low)
	return l
}

func (l *NeoPixelLED) Set(level core.Level) {
	l.level = level
	if level == core.High {
		l.pixels[0] = neoPixelOn
	} else {
		l.pixels[0] = color.RGBA{}
	}
	l.dev.WriteColors(l.pixels[:])
}

func (l *NeoPixelLED) Toggle() {
	l.Set(l.level.Invert())
}

func (l *NeoPixelLED) Level() core.Level {
	return l.level
}
