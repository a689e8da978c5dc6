// Package monitor decodes the diagnostic frame stream of the blinker
// firmware. It learns the message catalogue from the stream itself, renders
// each message as text and checks that the LED toggles at the announced
// rate.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"irqblink/protocol"
)

// Names of the messages the monitor interprets
const (
	nameBoot        = "boot"
	nameRateChanged = "rate_changed"
	nameLEDToggled  = "led_toggled"
	nameFault       = "fault"
)

// Monitor consumes raw serial bytes
type Monitor struct {
	out       io.Writer
	fifo      *protocol.FifoBuffer
	decoder   *protocol.Decoder
	catalogue *Catalogue
	reasm     reassembler
	stats     ToggleStats
	lastLost  uint32
	messages  int
	faults    int

	// OnMessage, if set, sees every decoded message after it is printed
	OnMessage func(Message)

	// Quiet suppresses per-message output
	Quiet bool
}

// New creates a Monitor writing to out. fallback, which may be nil, is used
// to decode messages until the firmware's own catalogue arrives.
func New(out io.Writer, fallback *Catalogue) *Monitor {
	m := &Monitor{
		out:       out,
		fifo:      protocol.NewFifoBuffer(1024),
		catalogue: fallback,
	}
	m.decoder = protocol.NewDecoder(m.handleFrame)
	// Assume the stream starts on a frame boundary. Attaching mid-frame
	// costs one corrupt frame before the decoder resynchronises.
	m.decoder.Receive(protocol.NewSliceInputBuffer([]byte{protocol.MessageValueSync}))
	return m
}

// Feed decodes data. Partial frames are kept until the rest arrives.
func (m *Monitor) Feed(data []byte) {
	for len(data) > 0 {
		n := m.fifo.Write(data)
		data = data[n:]
		m.decoder.Receive(m.fifo)
		if n == 0 && m.fifo.Free() == 0 {
			// Cannot happen with a frame-sized tail, but never spin
			m.fifo.Reset()
		}
	}
}

// Run reads from r until ctx is cancelled or r fails. With follow set, EOF
// is treated as a read timeout and reading continues, which is how serial
// ports with a read timeout report an idle line.
func (m *Monitor) Run(ctx context.Context, r io.Reader, follow bool) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := r.Read(buf)
		if n > 0 {
			m.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			if follow {
				continue
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
	}
}

func (m *Monitor) handleFrame(seq uint8, payload []byte) {
	if lost := m.decoder.Lost(); lost != m.lastLost {
		m.printf("-- %d frame(s) lost\n", lost-m.lastLost)
		m.lastLost = lost
		m.stats.Restart()
	}

	id, err := protocol.DecodeVLQUint(&payload)
	if err != nil {
		m.printf("-- seq=%d: bad message id: %v\n", seq, err)
		return
	}

	if id == CatalogueMessageID {
		m.handleCatalogueChunk(payload)
		return
	}

	msg := Message{Seq: seq, ID: uint16(id)}
	spec, ok := m.lookup(uint16(id))
	if ok {
		msg.Name = spec.Name
		args, err := decodeArgs(spec.Args, payload)
		if err != nil {
			m.printf("-- seq=%d %s: %v\n", seq, spec.Name, err)
			return
		}
		msg.Args = args
	} else if len(payload) > 0 {
		msg.Raw = append([]byte(nil), payload...)
	}

	m.messages++
	m.observe(msg)
	if !m.Quiet {
		m.printf("%s\n", msg)
	}
	if m.OnMessage != nil {
		m.OnMessage(msg)
	}
}

func (m *Monitor) lookup(id uint16) (*MessageSpec, bool) {
	if m.catalogue == nil {
		return nil, false
	}
	return m.catalogue.Lookup(id)
}

var catalogueArgs, _ = ParseFormat(catalogueFormat)

func (m *Monitor) handleCatalogueChunk(payload []byte) {
	args, err := decodeArgs(catalogueArgs, payload)
	if err != nil {
		m.printf("-- catalogue chunk: %v\n", err)
		return
	}
	complete, err := m.reasm.add(args[0].Value, args[1].Bytes)
	if err != nil {
		m.printf("-- %v\n", err)
		return
	}
	if complete == nil {
		return
	}

	cat, err := DecompressCatalogue(complete)
	if err != nil {
		m.printf("-- catalogue: %v\n", err)
		return
	}
	m.catalogue = cat
	if !m.Quiet {
		m.printf("-- catalogue %s: %d messages, clock %d Hz\n", cat.Version, cat.Len(), cat.ClockFreq)
	}
}

// observe feeds the interval statistics
func (m *Monitor) observe(msg Message) {
	switch msg.Name {
	case nameBoot:
		rate, _ := msg.Uint("rate")
		m.stats.SetRate(rate)
	case nameRateChanged:
		rate, _ := msg.Uint("rate")
		m.stats.SetRate(rate)
		if clock, ok := msg.Uint("clock"); ok {
			// The countdown restarts here, so the next toggle is a full
			// period away from this clock
			m.stats.Toggle(clock)
		}
	case nameLEDToggled:
		if clock, ok := msg.Uint("clock"); ok {
			m.stats.Toggle(clock)
		}
	case nameFault:
		m.faults++
	}
}

func (m *Monitor) printf(format string, args ...interface{}) {
	if m.out != nil {
		fmt.Fprintf(m.out, format, args...)
	}
}

// Catalogue returns the catalogue in use, or nil
func (m *Monitor) Catalogue() *Catalogue {
	return m.catalogue
}

// Stats returns the toggle interval statistics
func (m *Monitor) Stats() *ToggleStats {
	return &m.stats
}

// Messages returns the number of messages decoded
func (m *Monitor) Messages() int {
	return m.messages
}

// Faults returns the number of fault messages seen
func (m *Monitor) Faults() int {
	return m.faults
}

// Lost returns the number of frames sequence gaps say went missing
func (m *Monitor) Lost() uint32 {
	return m.decoder.Lost()
}

// Corrupt returns the number of corrupt frames skipped
func (m *Monitor) Corrupt() uint32 {
	return m.decoder.Corrupt()
}
