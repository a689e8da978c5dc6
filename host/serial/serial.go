// Package serial opens the debug UART the blinker writes its diagnostic
// frames to.
package serial

import (
	"io"
)

// DefaultBaud matches the firmware's debug UART default
const DefaultBaud = 115200

// Port is a byte stream from the device. It is an interface so tests and
// captures can stand in for real hardware.
type Port interface {
	io.ReadWriteCloser

	// Flush discards anything not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration matching the firmware defaults
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}
