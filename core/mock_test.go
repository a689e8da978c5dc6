package core

import "testing"

// MockPin is a test implementation of OutputPin
type MockPin struct {
	level   Level
	toggles int
}

func (m *MockPin) Set(level Level) { m.level = level }
func (m *MockPin) Toggle()         { m.level = m.level.Invert(); m.toggles++ }
func (m *MockPin) Level() Level    { return m.level }

// MockButton is a test implementation of InputPin
type MockButton struct {
	edge      Edge
	enableErr error
	pending   bool
	clears    int
}

func (m *MockButton) EnableEdgeInterrupt(edge Edge) error {
	if m.enableErr != nil {
		return m.enableErr
	}
	m.edge = edge
	return nil
}

func (m *MockButton) ClearPending() {
	m.pending = false
	m.clears++
}

// MockTimer is a test implementation of CountdownTimer
type MockTimer struct {
	starts  []uint32
	enabled bool
	pending bool
	clears  int
}

func (m *MockTimer) Start(ms uint32)        { m.starts = append(m.starts, ms) }
func (m *MockTimer) EnableExpiryInterrupt() { m.enabled = true }
func (m *MockTimer) ClearPending() {
	m.pending = false
	m.clears++
}

// period returns the last programmed period, 0 if never started
func (m *MockTimer) period() uint32 {
	if len(m.starts) == 0 {
		return 0
	}
	return m.starts[len(m.starts)-1]
}

// MockNVIC is a test implementation of InterruptController
type MockNVIC struct {
	unmasked []IRQ
}

func (m *MockNVIC) Unmask(irq IRQ) { m.unmasked = append(m.unmasked, irq) }

// MockBoard hands out mock peripherals once
type MockBoard struct {
	LED    *MockPin
	Button *MockButton
	Timer  *MockTimer
	NVIC   *MockNVIC

	taken  bool
	waits  int
	onWait func()
}

func NewMockBoard() *MockBoard {
	return &MockBoard{
		LED:    &MockPin{},
		Button: &MockButton{},
		Timer:  &MockTimer{},
		NVIC:   &MockNVIC{},
	}
}

func (b *MockBoard) TakePeripherals() (*Peripherals, bool) {
	if b.taken {
		return nil, false
	}
	b.taken = true
	return &Peripherals{LED: b.LED, Button: b.Button, Timer: b.Timer, NVIC: b.NVIC}, true
}

func (b *MockBoard) WaitForInterrupt() {
	b.waits++
	if b.onWait != nil {
		b.onWait()
	}
}

// setupTest resets firmware state and records faults instead of panicking
func setupTest(t *testing.T) *[]error {
	t.Helper()
	ResetFirmwareState()
	faults := new([]error)
	SetHaltHandler(func() {
		*faults = append(*faults, HaltReason())
	})
	t.Cleanup(ResetFirmwareState)
	return faults
}

// armedBoard returns a board whose idle loop has completed Setup
func armedBoard(t *testing.T) (*MockBoard, *Shared, *Idle) {
	t.Helper()
	board := NewMockBoard()
	shared := &Shared{}
	idle := NewIdle(board, shared)
	if err := idle.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	return board, shared, idle
}

// captureFrames installs a debug writer that keeps a copy of every frame
func captureFrames() *[][]byte {
	frames := new([][]byte)
	SetDebugWriter(func(frame []byte) {
		*frames = append(*frames, append([]byte(nil), frame...))
	})
	return frames
}
