package core

import "irqblink/protocol"

// DebugWriter receives one complete diagnostic frame at a time. It runs in
// the idle loop, outside any critical section, and may block.
type DebugWriter func(frame []byte)

// TraceEvent captures one interrupt-side event for post-mortem analysis
type TraceEvent struct {
	Kind  uint8  // Event type code
	Clock uint32 // GetTime at the event
	Value uint32 // Context-dependent value
}

// Event type codes
const (
	EvtButtonEdge  = 1 // Button edge handled; Value is the new rate
	EvtTimerExpiry = 2 // Timer expiry handled; Value is the new LED level
	EvtFault       = 3 // Fault entered
)

const (
	DiagRingSize  = 16 // Frames queued between idle loop flushes
	TraceRingSize = 8  // Keep last 8 events for post-mortem
)

type diagSlot struct {
	n   uint8
	buf [protocol.MessageLengthMax]byte
}

// Frames are encoded in place by the producer and copied out by the idle
// loop. Both sides touch the ring indices only inside a critical section.
var (
	debugWrite   DebugWriter
	debugEnabled = true

	diagFrame        protocol.FrameBuffer
	diagRing         [DiagRingSize]diagSlot
	diagHead         uint32 // Next slot to fill
	diagTail         uint32 // Next slot to drain
	diagSeq          uint8
	diagDropped      uint32 // Dropped since the last dropped report
	diagDroppedTotal uint32

	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
)

// SetDebugWriter sets the platform-specific frame sink.
// This allows platforms to redirect diagnostics to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugWrite = writer
}

// SetDebugEnabled enables or disables diagnostic frames. Trace events are
// recorded either way.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether diagnostic frames are produced
func IsDebugEnabled() bool {
	return debugEnabled
}

// Info queues a diagnostic frame carrying id and its integer arguments.
// Safe from interrupt context: it never blocks and never allocates. When
// the ring is full the frame is dropped and counted.
func Info(id MessageID, args ...uint32) {
	if !debugEnabled {
		return
	}
	_, state := EnterCritical()
	diagFrame.Begin(diagSeq)
	protocol.EncodeVLQUint(&diagFrame, uint32(id))
	for _, arg := range args {
		protocol.EncodeVLQUint(&diagFrame, arg)
	}
	commitFrame()
	ExitCritical(state)
}

// maxStringArg leaves room for the message id and the length prefix
const maxStringArg = protocol.MessagePayloadMax - 3 - 2

// InfoString queues a frame with a single string argument, truncated to
// fit one frame.
func InfoString(id MessageID, s string) {
	if !debugEnabled {
		return
	}
	if len(s) > maxStringArg {
		s = s[:maxStringArg]
	}
	_, state := EnterCritical()
	diagFrame.Begin(diagSeq)
	protocol.EncodeVLQUint(&diagFrame, uint32(id))
	protocol.EncodeVLQBytes(&diagFrame, []byte(s))
	commitFrame()
	ExitCritical(state)
}

// InfoBytes queues a frame with one integer argument followed by a byte
// string
func InfoBytes(id MessageID, value uint32, data []byte) {
	if !debugEnabled {
		return
	}
	_, state := EnterCritical()
	diagFrame.Begin(diagSeq)
	protocol.EncodeVLQUint(&diagFrame, uint32(id))
	protocol.EncodeVLQUint(&diagFrame, value)
	protocol.EncodeVLQBytes(&diagFrame, data)
	commitFrame()
	ExitCritical(state)
}

// commitFrame moves the finished diagFrame into the ring (caller must be in
// a critical section)
func commitFrame() {
	frame, ok := diagFrame.Finish()
	if !ok || diagHead-diagTail >= DiagRingSize {
		diagDropped++
		diagDroppedTotal++
		return
	}
	slot := &diagRing[diagHead%DiagRingSize]
	slot.n = uint8(copy(slot.buf[:], frame))
	diagHead++
	diagSeq++
}

// FlushDiagnostics drains queued frames to the debug writer. Drops since
// the last flush are reported with a dropped frame. Call from the idle loop
// (or a fault) only.
func FlushDiagnostics() {
	var buf [protocol.MessageLengthMax]byte
	for {
		_, state := EnterCritical()
		if diagHead == diagTail {
			dropped := diagDropped
			diagDropped = 0
			ExitCritical(state)
			if dropped == 0 {
				return
			}
			Info(MsgDropped, dropped)
			continue
		}
		slot := &diagRing[diagTail%DiagRingSize]
		n := copy(buf[:], slot.buf[:slot.n])
		diagTail++
		ExitCritical(state)

		if w := debugWrite; w != nil {
			w(buf[:n])
		}
	}
}

// PendingDiagnostics returns the number of frames waiting for a flush
func PendingDiagnostics() int {
	_, state := EnterCritical()
	n := int(diagHead - diagTail)
	ExitCritical(state)
	return n
}

// DroppedDiagnostics returns how many frames have been dropped since boot
func DroppedDiagnostics() uint32 {
	_, state := EnterCritical()
	n := diagDroppedTotal
	ExitCritical(state)
	return n
}

// resetDiagnostics empties the ring and detaches the writer (for testing)
func resetDiagnostics() {
	debugWrite = nil
	debugEnabled = true
	diagHead, diagTail = 0, 0
	diagSeq = 0
	diagDropped, diagDroppedTotal = 0, 0
}

// RecordEvent captures an event in the trace ring.
// This is always non-blocking and safe from interrupt context.
func RecordEvent(kind uint8, value uint32) {
	_, state := EnterCritical()
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		Kind:  kind,
		Clock: GetTime(),
		Value: value,
	}
	traceRingHead = (idx + 1) % TraceRingSize
	ExitCritical(state)
}

// TraceEvents returns the recorded events, oldest first
func TraceEvents() []TraceEvent {
	events := make([]TraceEvent, 0, TraceRingSize)
	_, state := EnterCritical()
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := traceRing[(start+i)%TraceRingSize]
		if evt.Kind == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	ExitCritical(state)
	return events
}

// DumpTrace queues the trace ring as trace frames (call on fault)
func DumpTrace() {
	_, state := EnterCritical()
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := &traceRing[(start+i)%TraceRingSize]
		if evt.Kind == 0 {
			continue
		}
		Info(MsgTrace, uint32(evt.Kind), evt.Clock, evt.Value)
	}
	ExitCritical(state)
}

// ClearTrace clears the trace ring
func ClearTrace() {
	_, state := EnterCritical()
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
	ExitCritical(state)
}
