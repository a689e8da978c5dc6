//go:build !tinygo

package sim

import (
	"testing"

	"irqblink/core"
)

type rig struct {
	board  *Board
	shared *core.Shared
	idle   *core.Idle
	faults *[]error
}

// newRig boots the blinker on a simulated board
func newRig(t *testing.T) *rig {
	t.Helper()
	core.ResetFirmwareState()
	faults := new([]error)
	core.SetHaltHandler(func() {
		*faults = append(*faults, core.HaltReason())
	})

	shared := &core.Shared{}
	board := NewBoard(shared)
	idle := core.NewIdle(board, shared)
	t.Cleanup(func() {
		board.Close()
		core.ResetFirmwareState()
	})

	if err := idle.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	return &rig{board: board, shared: shared, idle: idle, faults: faults}
}

func TestPowerOnBlinksAtInitialRate(t *testing.T) {
	r := newRig(t)

	r.board.Advance(3500)

	if got := r.board.LED.Toggles(); got != 3 {
		t.Errorf("Expected 3 toggles in 3.5s, got %d", got)
	}
	if r.board.LED.Level() != core.High {
		t.Errorf("Expected LED high after an odd number of toggles")
	}
	if r.board.Timer.Clears() != 3 {
		t.Errorf("Expected 3 timer clears, got %d", r.board.Timer.Clears())
	}
	if len(*r.faults) != 0 {
		t.Errorf("Unexpected faults: %v", *r.faults)
	}
}

func TestPressRestartsCountdown(t *testing.T) {
	r := newRig(t)
	r.board.SchedulePress(1500)

	r.board.Advance(3000)

	// 1000, then 2000, 2500, 3000 at the new rate
	if got := r.board.LED.Toggles(); got != 4 {
		t.Errorf("Expected 4 toggles, got %d", got)
	}
	if r.shared.Rate() != 500 || r.board.Timer.Period() != 500 {
		t.Errorf("Rate %d, period %d, expected both 500", r.shared.Rate(), r.board.Timer.Period())
	}
	if r.board.Button.Pending() || r.board.Button.Clears() != 1 {
		t.Errorf("Button latch not cleared once")
	}
}

func TestFourPressesWrap(t *testing.T) {
	r := newRig(t)
	for _, at := range []uint32{100, 200, 300, 400} {
		r.board.SchedulePress(at)
	}

	for _, want := range []uint32{500, 250, 125, 1000} {
		r.board.Advance(100)
		if r.shared.Rate() != want {
			t.Errorf("At %dms: rate %d, expected %d", r.board.Now(), r.shared.Rate(), want)
		}
		if r.board.Timer.Period() != r.shared.Rate() {
			t.Errorf("At %dms: period %d, rate %d", r.board.Now(), r.board.Timer.Period(), r.shared.Rate())
		}
	}

	starts := r.board.Timer.Starts()
	expected := []uint32{1000, 500, 250, 125, 1000}
	if len(starts) != len(expected) {
		t.Fatalf("Timer starts %v, expected %v", starts, expected)
	}
	for i := range expected {
		if starts[i] != expected[i] {
			t.Errorf("Start %d: %d, expected %d", i, starts[i], expected[i])
		}
	}
}

func TestIdleLoopInterleaving(t *testing.T) {
	r := newRig(t)
	for _, at := range []uint32{700, 1300, 1310, 2900, 5000} {
		r.board.SchedulePress(at)
	}

	for i := 0; i < 40; i++ {
		if !r.idle.Step() {
			t.Fatalf("Idle loop stopped at step %d", i)
		}
		rate := r.shared.Rate()
		if rate < core.RateFloor || rate > core.RateInitial {
			t.Fatalf("Rate %d out of bounds", rate)
		}
		if r.board.Timer.Period() != rate {
			t.Fatalf("Period %d does not match rate %d", r.board.Timer.Period(), rate)
		}
	}

	var timers, buttons int
	for _, irq := range r.board.Ctrl.Delivered() {
		switch irq {
		case core.IRQTimer:
			timers++
		case core.IRQButton:
			buttons++
		}
	}
	if r.board.LED.Toggles() != timers {
		t.Errorf("%d toggles for %d timer interrupts", r.board.LED.Toggles(), timers)
	}
	if r.board.Timer.Clears() != timers || r.board.Button.Clears() != buttons {
		t.Errorf("Clears (%d, %d) do not match deliveries (%d, %d)",
			r.board.Timer.Clears(), r.board.Button.Clears(), timers, buttons)
	}
}

func TestSimultaneousPendingTimerFirst(t *testing.T) {
	r := newRig(t)

	before := r.board.Ctrl.DeliveredCount()
	core.Critical(func(cs core.CS) {
		r.board.Button.Press()
		r.board.Timer.Expire()
		if r.board.Ctrl.DeliveredCount() != before {
			t.Error("Handler ran inside a critical section")
		}
	})

	delivered := r.board.Ctrl.Delivered()[before:]
	if len(delivered) != 2 || delivered[0] != core.IRQTimer || delivered[1] != core.IRQButton {
		t.Fatalf("Expected timer then button, got %v", delivered)
	}
	if r.board.LED.Toggles() != 1 || r.shared.Rate() != 500 {
		t.Errorf("Expected one toggle and rate 500, got %d and %d", r.board.LED.Toggles(), r.shared.Rate())
	}
	if r.board.Timer.Pending() || r.board.Button.Pending() {
		t.Errorf("Latches left set after both handlers ran")
	}
}

func TestBounceCountsEveryEdge(t *testing.T) {
	r := newRig(t)

	r.board.Button.Bounce(3)

	if r.shared.Rate() != 125 {
		t.Errorf("Expected three halvings (125), got %d", r.shared.Rate())
	}
}

func TestHaltStopsDelivery(t *testing.T) {
	r := newRig(t)

	core.Fault(core.ErrCellEmpty)
	before := r.board.Ctrl.DeliveredCount()
	r.board.Button.Click()
	r.board.Advance(2000)

	if r.board.Ctrl.DeliveredCount() != before {
		t.Errorf("Interrupts delivered after halt")
	}
	if r.idle.Step() {
		t.Errorf("Idle loop kept running after halt")
	}
	if r.idle.Phase() != core.PhaseHalted {
		t.Errorf("Expected halted phase, got %s", r.idle.Phase())
	}
}

// stubborn handles interrupts without clearing any latch
type stubborn struct {
	calls int
}

func (s *stubborn) Handle(irq core.IRQ) {
	s.calls++
}

func TestUnclearedLatchRetriggers(t *testing.T) {
	core.ResetFirmwareState()
	t.Cleanup(core.ResetFirmwareState)

	handler := &stubborn{}
	board := NewBoard(handler)
	defer board.Close()

	if err := board.Button.EnableEdgeInterrupt(core.Rising); err != nil {
		t.Fatalf("EnableEdgeInterrupt: %v", err)
	}
	board.Ctrl.Unmask(core.IRQButton)
	board.Button.Press()

	if handler.calls != DefaultStormLimit {
		t.Errorf("Expected %d deliveries, got %d", DefaultStormLimit, handler.calls)
	}
	if board.Ctrl.Storms() != 1 {
		t.Errorf("Expected one storm, got %d", board.Ctrl.Storms())
	}
	if !board.Ctrl.IsPending(core.IRQButton) {
		t.Errorf("Uncleared source should stay pending")
	}
}

func TestMaskedSourceStaysPending(t *testing.T) {
	core.ResetFirmwareState()
	t.Cleanup(core.ResetFirmwareState)

	handler := &stubborn{}
	board := NewBoard(handler)
	defer board.Close()

	board.Timer.EnableExpiryInterrupt()
	board.Timer.Expire()
	if handler.calls != 0 || !board.Ctrl.IsPending(core.IRQTimer) {
		t.Fatalf("Masked timer delivered or lost")
	}

	board.Timer.ClearPending()
	board.Ctrl.Unmask(core.IRQTimer)
	if handler.calls != 1 {
		t.Errorf("Expected one delivery on unmask, got %d", handler.calls)
	}
}

func TestTakePeripheralsOnce(t *testing.T) {
	core.ResetFirmwareState()
	board := NewBoard(&stubborn{})
	defer board.Close()

	if _, ok := board.TakePeripherals(); !ok {
		t.Fatal("First take failed")
	}
	if _, ok := board.TakePeripherals(); ok {
		t.Error("Second take succeeded")
	}
}
