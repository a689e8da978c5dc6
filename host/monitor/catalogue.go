package monitor

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CatalogueMessageID is the bootstrap message carrying the catalogue itself
const CatalogueMessageID = 0

// catalogueFormat is fixed so the catalogue can be read before it is known
const catalogueFormat = "offset=%u data=%*s"

var (
	ErrChunkOffset   = errors.New("catalogue chunk out of order")
	ErrBadFormat     = errors.New("malformed message format")
	ErrNotCompressed = errors.New("catalogue is not zlib compressed")
)

// ArgKind is how one argument is encoded on the wire
type ArgKind byte

const (
	ArgUint  ArgKind = 'u' // VLQ integer
	ArgByte  ArgKind = 'c' // VLQ integer, one byte wide on the device
	ArgBytes ArgKind = 's' // VLQ length followed by raw bytes
)

// ArgSpec is one name=%x field of a message format
type ArgSpec struct {
	Name string
	Kind ArgKind
}

// MessageSpec is one catalogue entry with its format parsed
type MessageSpec struct {
	ID     uint16
	Name   string
	Format string
	Args   []ArgSpec
}

// Catalogue is the message table the firmware sends at boot
type Catalogue struct {
	Version   string
	ClockFreq uint32
	messages  map[uint16]*MessageSpec
	byName    map[string]*MessageSpec
}

type catalogueJSON struct {
	Version   string `json:"version"`
	ClockFreq uint32 `json:"clock_freq"`
	Messages  []struct {
		ID     uint16 `json:"id"`
		Name   string `json:"name"`
		Format string `json:"format"`
	} `json:"messages"`
}

// ParseCatalogue parses the JSON catalogue
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var raw catalogueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalogue: %w", err)
	}

	c := &Catalogue{
		Version:   raw.Version,
		ClockFreq: raw.ClockFreq,
		messages:  make(map[uint16]*MessageSpec, len(raw.Messages)),
		byName:    make(map[string]*MessageSpec, len(raw.Messages)),
	}
	for _, m := range raw.Messages {
		args, err := ParseFormat(m.Format)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", m.Name, err)
		}
		spec := &MessageSpec{ID: m.ID, Name: m.Name, Format: m.Format, Args: args}
		c.messages[m.ID] = spec
		c.byName[m.Name] = spec
	}
	return c, nil
}

// DecompressCatalogue inflates a zlib-framed catalogue and parses it
func DecompressCatalogue(data []byte) (*Catalogue, error) {
	// zlib CMF byte for deflate with a 32K window
	if len(data) < 2 || data[0] != 0x78 {
		return nil, ErrNotCompressed
	}
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer r.Close()

	inflated, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to inflate catalogue: %w", err)
	}
	return ParseCatalogue(inflated)
}

// Lookup returns the message with the given id
func (c *Catalogue) Lookup(id uint16) (*MessageSpec, bool) {
	m, ok := c.messages[id]
	return m, ok
}

// LookupName returns the message with the given name
func (c *Catalogue) LookupName(name string) (*MessageSpec, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// Len returns the number of messages
func (c *Catalogue) Len() int {
	return len(c.messages)
}

// ParseFormat splits "rate=%u clock=%u" into argument specs
func ParseFormat(format string) ([]ArgSpec, error) {
	var args []ArgSpec
	for _, field := range strings.Fields(format) {
		name, conv, ok := strings.Cut(field, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%q: %w", field, ErrBadFormat)
		}
		var kind ArgKind
		switch conv {
		case "%u", "%i", "%hu":
			kind = ArgUint
		case "%c":
			kind = ArgByte
		case "%s", "%*s", "%.*s":
			kind = ArgBytes
		default:
			return nil, fmt.Errorf("%q: %w", field, ErrBadFormat)
		}
		args = append(args, ArgSpec{Name: name, Kind: kind})
	}
	return args, nil
}

// reassembler collects catalogue chunks until the empty end chunk
type reassembler struct {
	buf []byte
}

// add appends a chunk. It returns the complete compressed catalogue once
// the end chunk arrives. A chunk at offset 0 restarts collection, since it
// means the firmware rebooted.
func (r *reassembler) add(offset uint32, data []byte) (complete []byte, err error) {
	if offset == 0 {
		r.buf = r.buf[:0]
	}
	if int(offset) != len(r.buf) {
		return nil, fmt.Errorf("%w: got %d, have %d bytes", ErrChunkOffset, offset, len(r.buf))
	}
	if len(data) == 0 {
		complete = append([]byte(nil), r.buf...)
		r.buf = r.buf[:0]
		return complete, nil
	}
	r.buf = append(r.buf, data...)
	return nil, nil
}
