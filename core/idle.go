package core

// Phase is the idle loop's lifecycle state
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseConfiguring
	PhaseArmed
	PhaseHalted
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseConfiguring:
		return "configuring"
	case PhaseArmed:
		return "armed"
	case PhaseHalted:
		return "halted"
	default:
		return "phase" + itoa(int(p))
	}
}

// Idle is the main loop: it takes the peripherals, arms both interrupt
// sources and then sleeps between interrupts.
type Idle struct {
	board  Board
	shared *Shared
	phase  Phase
}

// NewIdle creates an idle loop that installs into shared
func NewIdle(board Board, shared *Shared) *Idle {
	return &Idle{
		board:  board,
		shared: shared,
	}
}

// Phase returns the current lifecycle state
func (l *Idle) Phase() Phase {
	if IsHalted() {
		return PhaseHalted
	}
	return l.phase
}

// Setup takes the peripherals and arms both interrupt sources. Any failure
// is fatal; the error is only returned when a halt handler lets Fault
// return.
func (l *Idle) Setup() error {
	if l.phase != PhaseUninitialized {
		return l.fail(ErrAlreadyConfigured)
	}
	l.phase = PhaseConfiguring

	EmitCatalogue()

	p, ok := l.board.TakePeripherals()
	if !ok {
		return l.fail(ErrPeripheralsTaken)
	}

	if err := p.Button.EnableEdgeInterrupt(Rising); err != nil {
		return l.fail(err)
	}
	p.Timer.EnableExpiryInterrupt()
	p.Timer.Start(RateInitial)

	l.shared.Install(p, RateInitial)
	if IsHalted() {
		l.phase = PhaseHalted
		return HaltReason()
	}
	Info(MsgBoot, RateInitial)

	p.NVIC.Unmask(IRQButton)
	p.NVIC.Unmask(IRQTimer)

	l.phase = PhaseArmed
	Info(MsgArmed)
	FlushDiagnostics()
	return nil
}

func (l *Idle) fail(err error) error {
	l.phase = PhaseHalted
	Fault(err)
	return err
}

// Run sets up if needed and then loops forever: wait for an interrupt,
// flush diagnostics, wait again. It only returns after a fault whose halt
// handler returns.
func (l *Idle) Run() {
	if l.phase == PhaseUninitialized {
		if err := l.Setup(); err != nil {
			return
		}
	}
	for l.Step() {
	}
}

// Step runs one armed iteration and reports whether the loop should go on
func (l *Idle) Step() bool {
	if IsHalted() {
		l.phase = PhaseHalted
		return false
	}
	l.board.WaitForInterrupt()
	FlushDiagnostics()
	if IsHalted() {
		l.phase = PhaseHalted
		return false
	}
	return true
}
