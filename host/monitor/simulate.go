//go:build !tinygo

package monitor

import (
	"fmt"

	"irqblink/core"
	"irqblink/hal/sim"
)

// SimOptions describes one simulated run
type SimOptions struct {
	Duration uint32   // Simulated milliseconds to run
	Presses  []uint32 // Button clicks, in simulated milliseconds
}

// SimResult is what the simulated board looked like at the end of a run
type SimResult struct {
	Toggles   int
	Rate      uint32
	Delivered int
	Halted    bool
	Reason    error
}

// BuiltinCatalogue returns the catalogue compiled into the firmware
func BuiltinCatalogue() (*Catalogue, error) {
	return ParseCatalogue(core.CatalogueJSON())
}

// Simulate boots the firmware on a simulated board and streams its
// diagnostic frames into m. Firmware state is global, so runs must not
// overlap.
func Simulate(m *Monitor, opts SimOptions) (SimResult, error) {
	core.ResetFirmwareState()
	defer core.ResetFirmwareState()

	core.SetHaltHandler(func() {})
	core.SetDebugWriter(func(frame []byte) {
		m.Feed(frame)
	})

	shared := &core.Shared{}
	board := sim.NewBoard(shared)
	defer board.Close()
	for _, at := range opts.Presses {
		board.SchedulePress(at)
	}

	idle := core.NewIdle(board, shared)
	if err := idle.Setup(); err != nil {
		return SimResult{}, fmt.Errorf("setup failed: %w", err)
	}

	// Never wait past the end of the run
	for board.Now() < opts.Duration {
		board.SetMaxWait(opts.Duration - board.Now())
		if !idle.Step() {
			break
		}
	}
	core.FlushDiagnostics()

	return SimResult{
		Toggles:   board.LED.Toggles(),
		Rate:      shared.Rate(),
		Delivered: board.Ctrl.DeliveredCount(),
		Halted:    core.IsHalted(),
		Reason:    core.HaltReason(),
	}, nil
}
