// Package tinycompress writes zlib streams made of stored (uncompressed)
// DEFLATE blocks. The output is valid input for any zlib reader while the
// encoder itself needs no tables and no allocation beyond its buffer, which
// keeps it usable on a microcontroller.
package tinycompress

import (
	"errors"
	"hash/adler32"
	"io"
)

const maxStoredBlock = 0xFFFF

var ErrClosed = errors.New("tinycompress: write after close")

// Writer accumulates input and emits it as a zlib stream on Close
type Writer struct {
	output   io.Writer
	inputBuf []byte
	closed   bool
}

// NewWriter creates a new zlib Writer compatible with io.WriteCloser.
// sizeHint pre-sizes the input buffer so Write does not reallocate.
func NewWriter(w io.Writer, sizeHint int) *Writer {
	return &Writer{
		output:   w,
		inputBuf: make([]byte, 0, sizeHint),
	}
}

// Write implements io.Writer
func (w *Writer) Write(p []byte) (n int, err error) {
	if w.closed {
		return 0, ErrClosed
	}
	w.inputBuf = append(w.inputBuf, p...)
	return len(p), nil
}

// Close writes the header, the stored blocks and the Adler-32 trailer
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	// CMF/FLG: deflate, 32K window, default level, FCHECK valid
	if _, err := w.output.Write([]byte{0x78, 0x9C}); err != nil {
		return err
	}

	data := w.inputBuf
	for {
		n := len(data)
		if n > maxStoredBlock {
			n = maxStoredBlock
		}
		final := n == len(data)
		if err := w.writeBlock(data[:n], final); err != nil {
			return err
		}
		data = data[n:]
		if final {
			break
		}
	}

	checksum := adler32.Checksum(w.inputBuf)
	_, err := w.output.Write([]byte{
		byte(checksum >> 24),
		byte(checksum >> 16),
		byte(checksum >> 8),
		byte(checksum),
	})
	return err
}

// writeBlock emits one stored block: BFINAL/BTYPE, LEN, NLEN, raw bytes
func (w *Writer) writeBlock(block []byte, final bool) error {
	var header [5]byte
	if final {
		header[0] = 0x01
	}
	length := uint16(len(block))
	nlength := ^length
	header[1] = byte(length)
	header[2] = byte(length >> 8)
	header[3] = byte(nlength)
	header[4] = byte(nlength >> 8)
	if _, err := w.output.Write(header[:]); err != nil {
		return err
	}
	if len(block) == 0 {
		return nil
	}
	_, err := w.output.Write(block)
	return err
}

// sliceWriter appends to a byte slice without bytes.Buffer growth rules
type sliceWriter struct {
	buf []byte
}

func (s *sliceWriter) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// Compress returns input as a complete zlib stream
func Compress(input []byte) []byte {
	blocks := len(input)/maxStoredBlock + 1
	out := &sliceWriter{buf: make([]byte, 0, 2+blocks*5+len(input)+4)}
	w := NewWriter(out, 0)
	w.inputBuf = input
	_ = w.Close() // sliceWriter never fails
	return out.buf
}
