package protocol

// FrameBuffer assembles one frame in place. While a frame is open it is the
// OutputBuffer the payload encoders write into; nothing is allocated, so it
// can be filled from interrupt context.
type FrameBuffer struct {
	buf      [MessageLengthMax]byte
	pos      int
	overflow bool
}

// Begin starts a new frame with the given 4-bit sequence number
func (f *FrameBuffer) Begin(seq uint8) {
	f.buf[MessagePositionSeq] = MessageDest | (seq & MessageSeqMask)
	f.pos = MessageHeaderSize
	f.overflow = false
}

// Output appends payload bytes. A payload that does not fit marks the frame
// as overflowed and Finish rejects it.
func (f *FrameBuffer) Output(data []byte) {
	if f.pos+len(data) > MessageLengthMax-MessageTrailerSize {
		f.overflow = true
		return
	}
	f.pos += copy(f.buf[f.pos:], data)
}

// Finish writes length, CRC and sync byte and returns the complete frame.
// ok is false if the payload overflowed.
func (f *FrameBuffer) Finish() (frame []byte, ok bool) {
	if f.overflow {
		return nil, false
	}
	msgLen := f.pos + MessageTrailerSize
	f.buf[MessagePositionLen] = uint8(msgLen)
	crc := CRC16(f.buf[:f.pos])
	f.buf[f.pos] = uint8(crc >> 8)
	f.buf[f.pos+1] = uint8(crc & 0xFF)
	f.buf[f.pos+2] = MessageValueSync
	return f.buf[:msgLen], true
}

// EncodeFrame wraps payload into a complete frame.
// Returns nil if the payload is longer than MessagePayloadMax.
func EncodeFrame(seq uint8, payload []byte) []byte {
	var f FrameBuffer
	f.Begin(seq)
	f.Output(payload)
	frame, ok := f.Finish()
	if !ok {
		return nil
	}
	out := make([]byte, len(frame))
	copy(out, frame)
	return out
}
