package core

import (
	"sync"

	"irqblink/protocol"
	"irqblink/tinycompress"
)

// MessageID identifies a diagnostic message in the catalogue. It is the
// first VLQ of every diagnostic frame payload.
type MessageID uint16

// Message is one catalogue entry. Format lists the arguments in the same
// notation as the host decoder: %u and %c are VLQ integers, %s and %*s are
// VLQ length-prefixed byte strings.
type Message struct {
	ID     MessageID
	Name   string
	Format string
}

// CatalogueChunkSize is the number of compressed catalogue bytes carried by
// one catalogue frame
const CatalogueChunkSize = 40

// MessageCatalogue maps message ids to names and argument formats. The
// firmware sends it once at boot so the host can render frames without
// sharing a build with the firmware.
type MessageCatalogue struct {
	mu       sync.Mutex
	messages []Message
	nameToID map[string]MessageID
	cached   []byte // compressed JSON, built on first use
}

var globalCatalogue = NewMessageCatalogue()

// Built-in messages. MsgCatalogue must stay first: the host relies on id 0
// to bootstrap.
var (
	MsgCatalogue   = RegisterMessage("catalogue", "offset=%u data=%*s")
	MsgBoot        = RegisterMessage("boot", "rate=%u")
	MsgArmed       = RegisterMessage("armed", "")
	MsgRateChanged = RegisterMessage("rate_changed", "rate=%u clock=%u")
	MsgLEDToggled  = RegisterMessage("led_toggled", "level=%c clock=%u")
	MsgFault       = RegisterMessage("fault", "reason=%s")
	MsgTrace       = RegisterMessage("trace", "kind=%c clock=%u value=%u")
	MsgDropped     = RegisterMessage("dropped", "count=%u")
)

// NewMessageCatalogue creates an empty catalogue
func NewMessageCatalogue() *MessageCatalogue {
	return &MessageCatalogue{
		nameToID: make(map[string]MessageID),
	}
}

// RegisterMessage adds a message to the global catalogue. Call it from
// package initialisation only: the catalogue is frozen once it has been
// sent.
func RegisterMessage(name, format string) MessageID {
	return globalCatalogue.Register(name, format)
}

// GetCatalogue returns the global catalogue
func GetCatalogue() *MessageCatalogue {
	return globalCatalogue
}

// Register adds a message and returns its id. Registering an existing name
// returns the existing id.
func (c *MessageCatalogue) Register(name, format string) MessageID {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, exists := c.nameToID[name]; exists {
		return id
	}

	id := MessageID(len(c.messages))
	c.messages = append(c.messages, Message{ID: id, Name: name, Format: format})
	c.nameToID[name] = id
	c.cached = nil
	return id
}

// Lookup returns the message registered under id
func (c *MessageCatalogue) Lookup(id MessageID) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(id) >= len(c.messages) {
		return Message{}, false
	}
	return c.messages[id], true
}

// Len returns the number of registered messages
func (c *MessageCatalogue) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// JSON renders the catalogue:
//
//	{"version":"irqblink-1","clock_freq":1000,"messages":[{"id":0,"name":"...","format":"..."},...]}
//
// Messages are listed in id order.
func (c *MessageCatalogue) JSON() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildJSONLocked()
}

func (c *MessageCatalogue) buildJSONLocked() []byte {
	result := make([]byte, 0, 512)

	// Build JSON manually to keep encoding/json out of the firmware
	result = append(result, `{"version":`...)
	result = appendJSONString(result, protocol.Version)
	result = append(result, `,"clock_freq":`...)
	result = append(result, utoa(TimerFreq)...)
	result = append(result, `,"messages":[`...)
	for i, m := range c.messages {
		if i > 0 {
			result = append(result, ',')
		}
		result = append(result, `{"id":`...)
		result = append(result, itoa(int(m.ID))...)
		result = append(result, `,"name":`...)
		result = appendJSONString(result, m.Name)
		result = append(result, `,"format":`...)
		result = appendJSONString(result, m.Format)
		result = append(result, '}')
	}
	result = append(result, "]}"...)
	return result
}

// Compressed returns the zlib-framed JSON catalogue, building and caching
// it on first use
func (c *MessageCatalogue) Compressed() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil {
		c.cached = tinycompress.Compress(c.buildJSONLocked())
	}
	return c.cached
}

// CatalogueJSON returns the global catalogue as JSON
func CatalogueJSON() []byte {
	return globalCatalogue.JSON()
}

// CompressedCatalogue returns the global catalogue as zlib-framed JSON
func CompressedCatalogue() []byte {
	return globalCatalogue.Compressed()
}

// EmitCatalogue queues the compressed catalogue as a run of catalogue frames
// followed by an empty chunk marking the end. The diagnostic ring is flushed
// between chunks so a long catalogue never overruns it. Call from the idle
// loop only.
func EmitCatalogue() {
	data := CompressedCatalogue()
	for offset := 0; offset < len(data); offset += CatalogueChunkSize {
		end := offset + CatalogueChunkSize
		if end > len(data) {
			end = len(data)
		}
		InfoBytes(MsgCatalogue, uint32(offset), data[offset:end])
		FlushDiagnostics()
	}
	InfoBytes(MsgCatalogue, uint32(len(data)), nil)
	FlushDiagnostics()
}

// appendJSONString appends s as a quoted JSON string. Only quote, backslash
// and control characters need escaping in catalogue names and formats.
func appendJSONString(dst []byte, s string) []byte {
	const hex = "0123456789abcdef"
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '"' || b == '\\':
			dst = append(dst, '\\', b)
		case b < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hex[b>>4], hex[b&0xF])
		default:
			dst = append(dst, b)
		}
	}
	return append(dst, '"')
}
