//go:build rp2040

package main

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/interrupt"

	"irqblink/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// Countdown program. The period in state machine cycles, minus the fixed
// overhead, is written to the TX FIFO; the program keeps it in X and
// reloads Y from it every round:
//
//	0: pull noblock   ; OSR = new period, or X if the FIFO is empty
//	1: out x, 32      ; X = period
//	2: pull noblock   ; OSR = X
//	3: out y, 32      ; Y = period
//	4: jmp y--, 4     ; count down
//	5: irq set 0      ; expiry
//
// One round takes Y+6 cycles.
func buildCountdownProgram(origin uint8) []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, false).Encode(),                // 0: pull noblock
		asm.Out(rp2pio.OutDestX, 32).Encode(),          // 1: out x, 32
		asm.Pull(false, false).Encode(),                // 2: pull noblock
		asm.Out(rp2pio.OutDestY, 32).Encode(),          // 3: out y, 32
		asm.Jmp(origin+4, rp2pio.JmpYNZeroDec).Encode(), // 4: jmp y--, 4
		asm.IRQSet(false, countdownIRQFlag).Encode(),    // 5: irq set 0
		// .wrap
	}
}

const (
	countdownOrigin   = 0     // Load at offset 0 for correct jump addresses
	countdownIRQFlag  = 0     // PIO IRQ flag raised on expiry
	countdownSMFreq   = 10000 // State machine clock, Hz
	countdownPerMs    = countdownSMFreq / 1000
	countdownOverhead = 6 // Cycles per round besides the countdown loop
)

var errPIOClaimed = errors.New("pio: state machine already claimed")

// PIOTimer is a CountdownTimer running on one PIO state machine. Expiry
// sets PIO IRQ flag 0, routed to the block's IRQ_0 line.
type PIOTimer struct {
	pio    *rp2pio.PIO
	regs   *rp.PIO0_Type
	sm     rp2pio.StateMachine
	offset uint8
	pioNum uint8
	intr   interrupt.Interrupt
}

// NewPIOTimer loads the countdown program into pioNum and claims state
// machine smNum. The state machine stays stopped until Start.
func NewPIOTimer(pioNum, smNum uint8) (*PIOTimer, error) {
	t := &PIOTimer{pioNum: pioNum}
	if pioNum == 0 {
		t.pio = rp2pio.PIO0
		t.regs = rp.PIO0
		t.intr = interrupt.New(rp.IRQ_PIO0_IRQ_0, handlePIOTimer)
	} else {
		t.pio = rp2pio.PIO1
		t.regs = rp.PIO1
		t.intr = interrupt.New(rp.IRQ_PIO1_IRQ_0, handlePIOTimer)
	}
	t.sm = t.pio.StateMachine(smNum)

	if !t.sm.TryClaim() {
		return nil, errPIOClaimed
	}

	program := buildCountdownProgram(countdownOrigin)
	offset, err := t.pio.AddProgram(program, countdownOrigin)
	if err != nil {
		return nil, err
	}
	t.offset = offset

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetOutShift(true, false, 32)
	cfg.SetClkDivIntFrac(uint16(machine.CPUFrequency()/countdownSMFreq), 0)
	t.sm.Init(offset, cfg)

	return t, nil
}

// Start restarts the countdown with a period of ms milliseconds
func (t *PIOTimer) Start(ms uint32) {
	count := ms*countdownPerMs - countdownOverhead

	t.sm.SetEnabled(false)
	t.sm.ClearFIFOs()
	t.sm.Restart()
	t.sm.ClkDivRestart()
	t.sm.Jmp(t.offset, rp2pio.JmpAlways)
	t.sm.TxPut(count)
	t.sm.SetEnabled(true)
}

// EnableExpiryInterrupt routes IRQ flag 0 to the block's IRQ_0 line. The
// NVIC line stays disabled until the controller unmasks it.
func (t *PIOTimer) EnableExpiryInterrupt() {
	t.regs.IRQ0_INTE.SetBits(1 << (rp.PIO0_IRQ0_INTE_SM0_Pos + countdownIRQFlag))
}

// ClearPending clears IRQ flag 0
func (t *PIOTimer) ClearPending() {
	t.pio.ClearIRQ(1 << countdownIRQFlag)
}

// Unmask enables the NVIC line
func (t *PIOTimer) Unmask() {
	t.intr.Enable()
}

func handlePIOTimer(interrupt.Interrupt) {
	shared.OnTimerExpiry()
}
