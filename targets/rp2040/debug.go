//go:build rp2040

package main

import (
	"machine"

	"irqblink/config"
	"irqblink/core"
)

var debugUART *machine.UART

// InitDebugUART configures the diagnostic UART from the board config and
// installs it as the core debug writer. Diagnostics are switched off if
// the UART cannot be configured.
func InitDebugUART(cfg *config.BoardConfig) {
	if !cfg.DiagnosticsEnabled() {
		core.SetDebugEnabled(false)
		return
	}

	debugUART = machine.UART0
	if cfg.DebugUART == 1 {
		debugUART = machine.UART1
	}

	tx, _ := config.ParsePin(cfg.DebugTX)
	rx, _ := config.ParsePin(cfg.DebugRX)
	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: cfg.DebugBaud,
		TX:       machine.Pin(tx),
		RX:       machine.Pin(rx),
	})
	if err != nil {
		core.SetDebugEnabled(false)
		return
	}

	core.SetDebugWriter(writeFrame)
}

// writeFrame sends one diagnostic frame, blocking until the UART FIFO has
// taken it
func writeFrame(frame []byte) {
	debugUART.Write(frame)
}
