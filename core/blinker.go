package core

// Shared is the state the two interrupt handlers and the idle loop have in
// common. Every slot is filled once by the idle loop before any interrupt
// is unmasked and is only touched inside a critical section afterwards.
type Shared struct {
	led    Cell[OutputPin]
	button Cell[InputPin]
	timer  Cell[CountdownTimer]
	rate   Cell[uint32]
}

// Install fills all four slots in one critical section
func (s *Shared) Install(p *Peripherals, rate uint32) {
	Critical(func(cs CS) {
		s.led.Install(cs, p.LED)
		s.button.Install(cs, p.Button)
		s.timer.Install(cs, p.Timer)
		s.rate.Install(cs, rate)
	})
}

// Installed reports whether Install has run
func (s *Shared) Installed() (ok bool) {
	Critical(func(cs CS) {
		ok = s.led.Installed(cs) && s.button.Installed(cs) &&
			s.timer.Installed(cs) && s.rate.Installed(cs)
	})
	return ok
}

// Rate returns the current toggle half-period in milliseconds
func (s *Shared) Rate() uint32 {
	return WithExclusive(&s.rate, func(r *uint32) uint32 {
		return *r
	})
}

// OnButtonEdge is the button interrupt handler. It halves the rate,
// reprograms the timer with the new period and clears the button latch, all
// in one critical section so the stored rate and the running period never
// disagree.
func (s *Shared) OnButtonEdge() {
	if IsHalted() {
		return
	}

	cs, state := EnterCritical()
	rate := s.rate.Borrow(cs)
	timer := s.timer.Borrow(cs)
	button := s.button.Borrow(cs)
	if rate == nil || timer == nil || button == nil {
		ExitCritical(state)
		return
	}
	next := NextRate(*rate)
	*rate = next
	(*timer).Start(next)
	(*button).ClearPending()
	ExitCritical(state)

	RecordEvent(EvtButtonEdge, next)
	Info(MsgRateChanged, next, GetTime())
}

// OnTimerExpiry is the timer interrupt handler: toggle the LED, clear the
// expiry latch.
func (s *Shared) OnTimerExpiry() {
	if IsHalted() {
		return
	}

	cs, state := EnterCritical()
	led := s.led.Borrow(cs)
	timer := s.timer.Borrow(cs)
	if led == nil || timer == nil {
		ExitCritical(state)
		return
	}
	(*led).Toggle()
	level := (*led).Level()
	(*timer).ClearPending()
	ExitCritical(state)

	RecordEvent(EvtTimerExpiry, uint32(level))
	Info(MsgLEDToggled, uint32(level), GetTime())
}

// Handle dispatches irq to its handler
func (s *Shared) Handle(irq IRQ) {
	switch irq {
	case IRQTimer:
		s.OnTimerExpiry()
	case IRQButton:
		s.OnButtonEdge()
	}
}
