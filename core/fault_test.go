package core

import (
	"strings"
	"testing"

	"irqblink/protocol"
)

func TestFaultReportsOnce(t *testing.T) {
	faults := setupTest(t)
	frames := captureFrames()

	SetTime(5)
	RecordEvent(EvtTimerExpiry, 1)
	Fault(ErrCellEmpty)
	Fault(ErrCellInstalled)

	if !IsHalted() || HaltReason() != ErrCellEmpty {
		t.Errorf("Expected halt with ErrCellEmpty, got %v", HaltReason())
	}
	if len(*faults) != 1 {
		t.Errorf("Halt handler ran %d times, expected 1", len(*faults))
	}

	// fault frame, then the trace: timer expiry and the fault event itself
	var ids []MessageID
	for _, frame := range *frames {
		payload := frame[protocol.MessageHeaderSize : len(frame)-protocol.MessageTrailerSize]
		id, err := protocol.DecodeVLQUint(&payload)
		if err != nil {
			t.Fatalf("Bad frame %v: %v", frame, err)
		}
		ids = append(ids, MessageID(id))
		if MessageID(id) == MsgFault {
			reason, _ := protocol.DecodeVLQBytes(&payload)
			if string(reason) != ErrCellEmpty.Error() {
				t.Errorf("Fault frame carries %q", reason)
			}
		}
	}
	expected := []MessageID{MsgFault, MsgTrace, MsgTrace}
	if len(ids) != len(expected) {
		t.Fatalf("Expected frames %v, got %v", expected, ids)
	}
	for i := range expected {
		if ids[i] != expected[i] {
			t.Errorf("Frame %d: id %d, expected %d", i, ids[i], expected[i])
		}
	}
}

func TestFaultDefaultHandlerPanics(t *testing.T) {
	ResetFirmwareState()
	t.Cleanup(ResetFirmwareState)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected default halt handler to panic")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, ErrPeripheralsTaken.Error()) {
			t.Errorf("Panic message %q does not carry the reason", msg)
		}
	}()
	Fault(ErrPeripheralsTaken)
}

func TestResetFirmwareState(t *testing.T) {
	setupTest(t)
	Fault(ErrCellEmpty)
	ResetFirmwareState()

	if IsHalted() || HaltReason() != nil {
		t.Errorf("Halt state survived reset")
	}
	if len(TraceEvents()) != 0 {
		t.Errorf("Trace survived reset")
	}
}
