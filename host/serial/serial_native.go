//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"time"

	tarm "github.com/tarm/serial"
)

var ErrNoConfig = errors.New("serial: nil config")

// nativePort adapts a tarm port to Port. Read, Write and Close come from
// the embedded port.
type nativePort struct {
	*tarm.Port
}

// Open opens cfg.Device with 8N1 framing. With a read timeout set, Read
// returns io.EOF when the line stays idle for that long.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if cfg.Baud <= 0 {
		return nil, fmt.Errorf("serial: invalid baud rate %d", cfg.Baud)
	}

	p, err := tarm.OpenPort(&tarm.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return nativePort{p}, nil
}
