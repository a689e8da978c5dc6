// Package config holds the board description the firmware boots from
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NumPins is the number of user GPIOs on the RP2040
const NumPins = 30

var (
	ErrBadPin       = errors.New("invalid pin name")
	ErrPinCollision = errors.New("pin assigned twice")
	ErrBadPull      = errors.New("invalid button pull")
	ErrBadPIO       = errors.New("timer PIO block out of range")
	ErrBadSM        = errors.New("timer state machine out of range")
	ErrBadUART      = errors.New("debug UART out of range")
)

// BoardConfig describes where the blinker's LED and button live and how
// diagnostics leave the board
type BoardConfig struct {
	LEDPin     string `json:"led_pin"`
	NeoPixel   bool   `json:"neopixel"` // LED pin drives a WS2812 instead of a plain LED
	ButtonPin  string `json:"button_pin"`
	ButtonPull string `json:"button_pull"` // "down", "up" or "none"

	TimerPIO int `json:"timer_pio"` // PIO block running the countdown
	TimerSM  int `json:"timer_sm"`  // State machine within the block

	Diagnostics *bool  `json:"diagnostics"`
	DebugUART   int    `json:"debug_uart"`
	DebugTX     string `json:"debug_tx"`
	DebugRX     string `json:"debug_rx"`
	DebugBaud   uint32 `json:"debug_baud"`
}

// LoadConfig parses a JSON board description, fills defaults and validates
// the result
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	var config BoardConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values for a Raspberry Pi Pico
func applyDefaults(config *BoardConfig) {
	if config.LEDPin == "" {
		config.LEDPin = "gpio25"
	}
	if config.ButtonPin == "" {
		config.ButtonPin = "gpio15"
	}
	if config.ButtonPull == "" {
		config.ButtonPull = "down"
	}
	if config.Diagnostics == nil {
		enabled := true
		config.Diagnostics = &enabled
	}
	if config.DebugTX == "" {
		config.DebugTX = "gpio0"
	}
	if config.DebugRX == "" {
		config.DebugRX = "gpio1"
	}
	if config.DebugBaud == 0 {
		config.DebugBaud = 115200
	}
}

// DefaultConfig returns the Raspberry Pi Pico layout: onboard LED on GPIO25,
// button to 3V3 on GPIO15, diagnostics on UART0
func DefaultConfig() *BoardConfig {
	config := &BoardConfig{}
	applyDefaults(config)
	return config
}

// DiagnosticsEnabled reports whether diagnostic frames should be sent
func (c *BoardConfig) DiagnosticsEnabled() bool {
	return c.Diagnostics == nil || *c.Diagnostics
}

// Validate checks pin names, pin collisions and peripheral indices
func (c *BoardConfig) Validate() error {
	used := make(map[uint8]string)
	claim := func(role, name string) error {
		pin, err := ParsePin(name)
		if err != nil {
			return fmt.Errorf("%s: %w", role, err)
		}
		if other, taken := used[pin]; taken {
			return fmt.Errorf("%s and %s on gpio%d: %w", other, role, pin, ErrPinCollision)
		}
		used[pin] = role
		return nil
	}

	if err := claim("led_pin", c.LEDPin); err != nil {
		return err
	}
	if err := claim("button_pin", c.ButtonPin); err != nil {
		return err
	}
	if c.DiagnosticsEnabled() {
		if err := claim("debug_tx", c.DebugTX); err != nil {
			return err
		}
		if err := claim("debug_rx", c.DebugRX); err != nil {
			return err
		}
		if c.DebugUART < 0 || c.DebugUART > 1 {
			return fmt.Errorf("uart%d: %w", c.DebugUART, ErrBadUART)
		}
	}

	switch c.ButtonPull {
	case "down", "up", "none":
	default:
		return fmt.Errorf("%q: %w", c.ButtonPull, ErrBadPull)
	}
	if c.TimerPIO < 0 || c.TimerPIO > 1 {
		return fmt.Errorf("pio%d: %w", c.TimerPIO, ErrBadPIO)
	}
	if c.TimerSM < 0 || c.TimerSM > 3 {
		return fmt.Errorf("sm%d: %w", c.TimerSM, ErrBadSM)
	}
	return nil
}

// ParsePin converts "gpio25" (or "GPIO25", or "25") to a pin number
func ParsePin(name string) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "gpio")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= NumPins {
		return 0, fmt.Errorf("%q: %w", name, ErrBadPin)
	}
	return uint8(n), nil
}
