package protocol

import "testing"

func TestEncodeFrameLayout(t *testing.T) {
	frame := EncodeFrame(3, []byte{0xAA, 0xBB})
	if len(frame) != 7 {
		t.Fatalf("Expected 7 byte frame, got %d: %v", len(frame), frame)
	}
	if frame[MessagePositionLen] != 7 {
		t.Errorf("Length byte = %d, expected 7", frame[MessagePositionLen])
	}
	if frame[MessagePositionSeq] != MessageDest|3 {
		t.Errorf("Sequence byte = 0x%02X, expected 0x13", frame[MessagePositionSeq])
	}
	if frame[len(frame)-1] != MessageValueSync {
		t.Errorf("Missing trailing sync byte: %v", frame)
	}
	crc := CRC16(frame[:4])
	if frame[4] != uint8(crc>>8) || frame[5] != uint8(crc) {
		t.Errorf("CRC bytes %02X %02X, expected %04X", frame[4], frame[5], crc)
	}
}

func TestEncodeFrameSequenceWraps(t *testing.T) {
	frame := EncodeFrame(0x13, nil)
	if frame[MessagePositionSeq] != MessageDest|3 {
		t.Errorf("Sequence byte = 0x%02X, expected 0x13", frame[MessagePositionSeq])
	}
}

func TestEncodeFrameTooLong(t *testing.T) {
	if EncodeFrame(0, make([]byte, MessagePayloadMax)) == nil {
		t.Error("Largest payload rejected")
	}
	if EncodeFrame(0, make([]byte, MessagePayloadMax+1)) != nil {
		t.Error("Oversized payload accepted")
	}
}

func TestFrameBufferReuse(t *testing.T) {
	var f FrameBuffer
	f.Begin(0)
	EncodeVLQUint(&f, 1000)
	first, ok := f.Finish()
	if !ok {
		t.Fatal("Finish failed")
	}
	firstLen := len(first)

	f.Begin(1)
	EncodeVLQUint(&f, 1)
	second, ok := f.Finish()
	if !ok {
		t.Fatal("Finish failed")
	}
	if len(second) != firstLen-1 {
		t.Errorf("Reused frame length %d, expected %d", len(second), firstLen-1)
	}

	payload := second[MessageHeaderSize : len(second)-MessageTrailerSize]
	v, err := DecodeVLQUint(&payload)
	if err != nil || v != 1 {
		t.Errorf("Decoded %d (%v), expected 1", v, err)
	}
}
