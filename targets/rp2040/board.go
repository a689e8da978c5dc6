//go:build rp2040

package main

import (
	"device/arm"
	"machine"

	"irqblink/config"
	"irqblink/core"
)

// Board builds the blinker peripherals from the board config. Both
// interrupt lines keep the default NVIC priority; at equal priority the
// Cortex-M0+ takes the lower IRQ number first, so PIOx_IRQ_0 (7 or 9) runs
// before IO_IRQ_BANK0 (13) when both are pending.
type Board struct {
	cfg   *config.BoardConfig
	taken bool
}

// NewBoard creates a board for cfg
func NewBoard(cfg *config.BoardConfig) *Board {
	return &Board{cfg: cfg}
}

func (b *Board) TakePeripherals() (*core.Peripherals, bool) {
	if b.taken {
		return nil, false
	}
	b.taken = true

	ledPin, _ := config.ParsePin(b.cfg.LEDPin)
	buttonPin, _ := config.ParsePin(b.cfg.ButtonPin)

	var led core.OutputPin
	if b.cfg.NeoPixel {
		led = NewNeoPixelLED(machine.Pin(ledPin))
	} else {
		led = NewGPIOLED(machine.Pin(ledPin))
	}

	timer, err := NewPIOTimer(uint8(b.cfg.TimerPIO), uint8(b.cfg.TimerSM))
	if err != nil {
		core.Fault(err)
		return nil, false
	}
	button := NewGPIOButton(machine.Pin(buttonPin), b.cfg.ButtonPull)

	return &core.Peripherals{
		LED:    led,
		Button: button,
		Timer:  timer,
		NVIC:   &NVIC{timer: timer, button: button},
	}, true
}

// WaitForInterrupt sleeps until the next interrupt
func (b *Board) WaitForInterrupt() {
	arm.Asm("wfi")
}

// NVIC unmasks the two blinker interrupt lines
type NVIC struct {
	timer  *PIOTimer
	button *GPIOButton
}

func (n *NVIC) Unmask(irq core.IRQ) {
	switch irq {
	case core.IRQTimer:
		n.timer.Unmask()
	case core.IRQButton:
		n.button.Unmask()
	}
}
