package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"irqblink/protocol"
)

// Arg is one decoded argument
type Arg struct {
	Name  string
	Kind  ArgKind
	Value uint32
	Bytes []byte
}

// Message is one decoded diagnostic frame
type Message struct {
	Seq  uint8
	ID   uint16
	Name string
	Args []Arg
	Raw  []byte // Undecoded argument bytes when the id is unknown
}

// Uint returns the integer argument called name
func (m Message) Uint(name string) (uint32, bool) {
	for _, a := range m.Args {
		if a.Name == name && a.Kind != ArgBytes {
			return a.Value, true
		}
	}
	return 0, false
}

// String renders the message as "name key=value ..."
func (m Message) String() string {
	var sb strings.Builder
	if m.Name != "" {
		sb.WriteString(m.Name)
	} else {
		sb.WriteString("#")
		sb.WriteString(strconv.Itoa(int(m.ID)))
	}
	for _, a := range m.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteByte('=')
		if a.Kind == ArgBytes {
			sb.WriteString(strconv.Quote(string(a.Bytes)))
		} else {
			sb.WriteString(strconv.FormatUint(uint64(a.Value), 10))
		}
	}
	if len(m.Raw) > 0 {
		fmt.Fprintf(&sb, " raw=%x", m.Raw)
	}
	return sb.String()
}

// decodeArgs parses payload according to args. The returned byte slices
// are copies.
func decodeArgs(args []ArgSpec, payload []byte) ([]Arg, error) {
	out := make([]Arg, 0, len(args))
	for _, spec := range args {
		a := Arg{Name: spec.Name, Kind: spec.Kind}
		if spec.Kind == ArgBytes {
			b, err := protocol.DecodeVLQBytes(&payload)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", spec.Name, err)
			}
			a.Bytes = append([]byte(nil), b...)
		} else {
			v, err := protocol.DecodeVLQUint(&payload)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", spec.Name, err)
			}
			a.Value = v
		}
		out = append(out, a)
	}
	return out, nil
}
