package protocol

// FrameHandler receives the payload of each valid frame. The payload slice
// is only valid during the call.
type FrameHandler func(seq uint8, payload []byte)

// Decoder splits a byte stream into frames. It resynchronises on the sync
// byte after garbage or a corrupt frame and counts sequence gaps so dropped
// frames are visible to the reader.
type Decoder struct {
	synchronized bool
	expectedSeq  int // -1 until the first frame
	lost         uint32
	corrupt      uint32
	handler      FrameHandler
}

// NewDecoder creates a Decoder that starts unsynchronized: everything up to
// the first sync byte is discarded.
func NewDecoder(handler FrameHandler) *Decoder {
	return &Decoder{
		expectedSeq: -1,
		handler:     handler,
	}
}

// Receive consumes every complete frame in input and leaves a trailing
// partial frame in place for the next call.
func (d *Decoder) Receive(input InputBuffer) {
	data := input.Data()

	for len(data) > 0 {
		if !d.synchronized {
			// Look for sync byte to resynchronize
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}

		// Wait for full message
		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := data[MessageHeaderSize : msgLen-MessageTrailerSize]
		data = data[msgLen:]
		d.track(seq & MessageSeqMask)
		if d.handler != nil {
			d.handler(seq&MessageSeqMask, payload)
		}
	}

	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (d *Decoder) desync() {
	d.synchronized = false
	d.corrupt++
}

// track counts frames skipped between the previous sequence and seq
func (d *Decoder) track(seq uint8) {
	if d.expectedSeq >= 0 && int(seq) != d.expectedSeq {
		d.lost += uint32((int(seq) - d.expectedSeq) & MessageSeqMask)
	}
	d.expectedSeq = int((seq + 1) & MessageSeqMask)
}

// Lost returns how many frames sequence gaps say went missing. Gaps of 16
// or more frames alias and are undercounted.
func (d *Decoder) Lost() uint32 {
	return d.lost
}

// Corrupt returns how many times a bad length, sequence, trailer or CRC
// forced a resynchronisation
func (d *Decoder) Corrupt() uint32 {
	return d.corrupt
}

// Synchronized reports whether the decoder is aligned on frame boundaries
func (d *Decoder) Synchronized() bool {
	return d.synchronized
}

// Reset forgets sequence history and drops back to searching for sync
func (d *Decoder) Reset() {
	d.synchronized = false
	d.expectedSeq = -1
	d.lost = 0
	d.corrupt = 0
}
