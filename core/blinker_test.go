package core

import "testing"

// Scenario: power-on, no input. The LED toggles once per expiry at the
// initial rate.
func TestBlinkerSteadyState(t *testing.T) {
	faults := setupTest(t)
	board, shared, _ := armedBoard(t)

	if shared.Rate() != RateInitial {
		t.Fatalf("Expected rate %d after setup, got %d", RateInitial, shared.Rate())
	}
	if board.Timer.period() != RateInitial {
		t.Fatalf("Expected timer period %d, got %d", RateInitial, board.Timer.period())
	}

	expected := []Level{High, Low, High}
	for i, want := range expected {
		board.Timer.pending = true
		shared.OnTimerExpiry()
		if board.LED.Level() != want {
			t.Errorf("Expiry %d: LED %d, expected %d", i+1, board.LED.Level(), want)
		}
		if board.Timer.pending {
			t.Errorf("Expiry %d: timer latch not cleared", i+1)
		}
	}
	if board.LED.toggles != 3 {
		t.Errorf("Expected 3 toggles, got %d", board.LED.toggles)
	}
	if len(*faults) != 0 {
		t.Errorf("Unexpected faults: %v", *faults)
	}
}

// Scenario: one press halves the rate and restarts the timer with it
func TestBlinkerSinglePress(t *testing.T) {
	setupTest(t)
	board, shared, _ := armedBoard(t)

	board.Button.pending = true
	shared.OnButtonEdge()

	if shared.Rate() != 500 {
		t.Errorf("Expected rate 500, got %d", shared.Rate())
	}
	if board.Timer.period() != 500 {
		t.Errorf("Expected timer restarted at 500, got %d", board.Timer.period())
	}
	if board.Button.pending || board.Button.clears != 1 {
		t.Errorf("Button latch not cleared exactly once (pending=%v clears=%d)",
			board.Button.pending, board.Button.clears)
	}
	if board.LED.toggles != 0 {
		t.Errorf("Button press toggled the LED")
	}
}

// Scenario: four presses walk the full cycle and the timer always follows
func TestBlinkerPressCycle(t *testing.T) {
	setupTest(t)
	board, shared, _ := armedBoard(t)

	for i, want := range []uint32{500, 250, 125, 1000} {
		shared.OnButtonEdge()
		if shared.Rate() != want {
			t.Errorf("Press %d: rate %d, expected %d", i+1, shared.Rate(), want)
		}
		if board.Timer.period() != shared.Rate() {
			t.Errorf("Press %d: timer period %d does not match rate %d",
				i+1, board.Timer.period(), shared.Rate())
		}
	}

	// Setup start plus one start per press
	if len(board.Timer.starts) != 5 {
		t.Errorf("Expected 5 timer starts, got %v", board.Timer.starts)
	}
}

// Scenario: presses and expiries interleaved. Only expiries toggle and the
// timer period tracks the rate throughout.
func TestBlinkerInterleaved(t *testing.T) {
	setupTest(t)
	board, shared, _ := armedBoard(t)

	events := []IRQ{IRQTimer, IRQButton, IRQTimer, IRQTimer, IRQButton, IRQButton, IRQTimer}
	toggles := 0
	for i, irq := range events {
		shared.Handle(irq)
		if irq == IRQTimer {
			toggles++
		}
		if board.LED.toggles != toggles {
			t.Errorf("Event %d: %d toggles, expected %d", i, board.LED.toggles, toggles)
		}
		if board.Timer.period() != shared.Rate() {
			t.Errorf("Event %d: period %d, rate %d", i, board.Timer.period(), shared.Rate())
		}
		rate := shared.Rate()
		if rate < RateFloor || rate > RateInitial {
			t.Errorf("Event %d: rate %d out of bounds", i, rate)
		}
	}
	if shared.Rate() != 125 {
		t.Errorf("Expected rate 125 after three presses, got %d", shared.Rate())
	}
}

func TestBlinkerClearOnClearLatch(t *testing.T) {
	setupTest(t)
	board, shared, _ := armedBoard(t)

	// Expiry with the latch already clear still toggles once and clears again
	shared.OnTimerExpiry()
	shared.OnTimerExpiry()
	if board.Timer.clears != 2 || board.Timer.pending {
		t.Errorf("Expected two clears and no pending latch, got clears=%d pending=%v",
			board.Timer.clears, board.Timer.pending)
	}
	if board.LED.toggles != 2 {
		t.Errorf("Expected 2 toggles, got %d", board.LED.toggles)
	}
}

func TestBlinkerBeforeInstallFaults(t *testing.T) {
	faults := setupTest(t)

	var shared Shared
	shared.OnTimerExpiry()

	if len(*faults) != 1 || (*faults)[0] != ErrCellEmpty {
		t.Fatalf("Expected a single ErrCellEmpty fault, got %v", *faults)
	}

	// Once halted, handlers do nothing
	shared.OnButtonEdge()
	if len(*faults) != 1 {
		t.Errorf("Handler ran after halt: %v", *faults)
	}
}

func TestBlinkerHaltedIsInert(t *testing.T) {
	setupTest(t)
	board, shared, _ := armedBoard(t)

	Fault(ErrPeripheralsTaken)
	shared.OnTimerExpiry()
	shared.OnButtonEdge()

	if board.LED.toggles != 0 {
		t.Errorf("LED toggled after fault")
	}
	if len(board.Timer.starts) != 1 {
		t.Errorf("Timer reprogrammed after fault: %v", board.Timer.starts)
	}
}

func TestBlinkerTraceEvents(t *testing.T) {
	setupTest(t)
	_, shared, _ := armedBoard(t)

	SetTime(10)
	shared.OnTimerExpiry()
	SetTime(20)
	shared.OnButtonEdge()

	events := TraceEvents()
	if len(events) != 2 {
		t.Fatalf("Expected 2 trace events, got %v", events)
	}
	if events[0] != (TraceEvent{Kind: EvtTimerExpiry, Clock: 10, Value: uint32(High)}) {
		t.Errorf("Unexpected first event %+v", events[0])
	}
	if events[1] != (TraceEvent{Kind: EvtButtonEdge, Clock: 20, Value: 500}) {
		t.Errorf("Unexpected second event %+v", events[1])
	}
}
