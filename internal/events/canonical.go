// Package events defines versioned domain events and the transports that
// carry them.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CanonicalEvent is a domain event whose type name ends in a ".vN" schema
// version, e.g. "lead.created.v1".
type CanonicalEvent interface {
	EventType() string
}

// Envelope is the wire record consumers of the lead topic read.
type Envelope struct {
	EventID         uuid.UUID       `json:"event_id"`
	EventType       string          `json:"event_type"`
	SchemaVersion   int             `json:"schema_version"`
	Source          string          `json:"source,omitempty"`
	Aggregate       string          `json:"aggregate"`
	TimestampMicros int64           `json:"timestamp"`
	CorrelationID   string          `json:"correlation_id,omitempty"`
	Payload         json.RawMessage `json:"payload"`
}

// EnvelopeOption adjusts a freshly built envelope.
type EnvelopeOption func(*Envelope)

// WithSource names the service that produced the event.
func WithSource(source string) EnvelopeOption {
	return func(e *Envelope) {
		e.Source = strings.TrimSpace(source)
	}
}

// WithEventID pins the event id. uuid.Nil is ignored.
func WithEventID(id uuid.UUID) EnvelopeOption {
	return func(e *Envelope) {
		if id != uuid.Nil {
			e.EventID = id
		}
	}
}

// WithTimestamp pins the event time. A zero time is ignored.
func WithTimestamp(ts time.Time) EnvelopeOption {
	return func(e *Envelope) {
		if !ts.IsZero() {
			e.TimestampMicros = ts.UTC().UnixMicro()
		}
	}
}

var (
	errMissingAggregate = errors.New("events: aggregate is required")
	errNilEvent         = errors.New("events: canonical event required")
	errUnversionedType  = errors.New("events: event type must end in .v<N>")
	nowFunc             = time.Now
)

// NewEnvelope wraps evt for publishing. The aggregate doubles as the
// partition key on transports that support one.
func NewEnvelope(aggregate, correlationID string, evt CanonicalEvent, opts ...EnvelopeOption) (Envelope, error) {
	aggregate = strings.TrimSpace(aggregate)
	if aggregate == "" {
		return Envelope{}, errMissingAggregate
	}
	if evt == nil {
		return Envelope{}, errNilEvent
	}
	eventType := strings.TrimSpace(evt.EventType())
	version, err := SchemaVersion(eventType)
	if err != nil {
		return Envelope{}, err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s payload: %w", eventType, err)
	}

	env := Envelope{
		EventID:         uuid.New(),
		EventType:       eventType,
		SchemaVersion:   version,
		Aggregate:       aggregate,
		TimestampMicros: nowFunc().UTC().UnixMicro(),
		CorrelationID:   strings.TrimSpace(correlationID),
		Payload:         payload,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&env)
		}
	}
	return env, nil
}

// SchemaVersion extracts N from an event type ending in ".vN".
func SchemaVersion(eventType string) (int, error) {
	idx := strings.LastIndex(eventType, ".v")
	if idx <= 0 {
		return 0, fmt.Errorf("%w: %q", errUnversionedType, eventType)
	}
	version, err := strconv.Atoi(eventType[idx+2:])
	if err != nil || version < 1 {
		return 0, fmt.Errorf("%w: %q", errUnversionedType, eventType)
	}
	return version, nil
}
