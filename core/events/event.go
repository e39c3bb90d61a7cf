package events

import (
	"math/big"

	"yonledger/crypto"
)

// Event represents a structured state change emitted by an engine.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (journal, metrics).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Record is the broadcastable form of an event.
type Record struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Payload is implemented by events that carry a Record.
type Payload interface {
	Event() *Record
}

type envelope struct {
	rec *Record
}

func (e envelope) EventType() string {
	if e.rec == nil {
		return ""
	}
	return e.rec.Type
}

func (e envelope) Event() *Record { return e.rec }

// Wrap converts a record into an emitter-friendly event.
func Wrap(rec *Record) Event { return envelope{rec: rec} }

// RecordOf extracts the record carried by evt, if any.
func RecordOf(evt Event) *Record {
	payload, ok := evt.(Payload)
	if !ok {
		return nil
	}
	return payload.Event()
}

// Fanout delivers every event to each non-nil emitter in order.
type Fanout []Emitter

// Emit implements the Emitter interface.
func (f Fanout) Emit(evt Event) {
	for _, emitter := range f {
		if emitter != nil {
			emitter.Emit(evt)
		}
	}
}

// FormatAmount renders an amount, treating nil as zero.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// FormatAddress renders a raw identity as a bech32 address.
func FormatAddress(addr [20]byte) string {
	return crypto.FromRaw(addr).String()
}
