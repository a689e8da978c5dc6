package protocol

// InputBuffer is a window onto received bytes that the decoder consumes
// from the front
type InputBuffer interface {
	// Data returns the unconsumed bytes
	Data() []byte

	// Available returns len(Data())
	Available() int

	// Pop discards n bytes from the front
	Pop(n int)
}

// OutputBuffer is where the VLQ encoders write
type OutputBuffer interface {
	Output(data []byte)
}

// SliceInputBuffer is an InputBuffer over a fixed slice
type SliceInputBuffer struct {
	data []byte
}

func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte {
	return s.data
}

func (s *SliceInputBuffer) Available() int {
	return len(s.data)
}

func (s *SliceInputBuffer) Pop(n int) {
	if n > len(s.data) {
		n = len(s.data)
	}
	s.data = s.data[n:]
}

// ScratchOutput is a growable OutputBuffer for host code and tests
type ScratchOutput struct {
	buf []byte
}

func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{buf: make([]byte, 0, MessageLengthMax)}
}

func (s *ScratchOutput) Output(data []byte) {
	s.buf = append(s.buf, data...)
}

// Len returns the number of bytes written
func (s *ScratchOutput) Len() int {
	return len(s.buf)
}

// Result returns the bytes written so far. The slice is reused after Reset.
func (s *ScratchOutput) Result() []byte {
	return s.buf
}

func (s *ScratchOutput) Reset() {
	s.buf = s.buf[:0]
}

// FifoBuffer queues serial bytes for the decoder. Unread bytes are always
// contiguous: Write slides them to the front when it runs out of room at
// the end, so Data never copies.
type FifoBuffer struct {
	buf  []byte
	head int // First unread byte
	tail int // One past the last unread byte
}

// NewFifoBuffer creates a FifoBuffer holding up to capacity bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write queues as much of data as fits and returns the count taken
func (f *FifoBuffer) Write(data []byte) int {
	if len(data) > len(f.buf)-f.tail && f.head > 0 {
		f.tail = copy(f.buf, f.buf[f.head:f.tail])
		f.head = 0
	}
	n := copy(f.buf[f.tail:], data)
	f.tail += n
	return n
}

func (f *FifoBuffer) Data() []byte {
	return f.buf[f.head:f.tail]
}

func (f *FifoBuffer) Available() int {
	return f.tail - f.head
}

// Free returns how many more bytes Write can take
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available()
}

func (f *FifoBuffer) Pop(n int) {
	f.head += n
	if f.head >= f.tail {
		f.head, f.tail = 0, 0
	}
}

// Reset discards everything queued
func (f *FifoBuffer) Reset() {
	f.head, f.tail = 0, 0
}
