package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/whrealtors/realty-web/internal/leads"
	"github.com/whrealtors/realty-web/pkg/logging"
)

var tracer = otel.Tracer("realty.internal.events")

// Publisher delivers envelopes to a downstream transport.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes envelopes to a single topic keyed by aggregate.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logging.Logger
}

// NewKafkaWriter builds a synchronous writer so Publish reports broker errors.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}

// NewKafkaPublisher wraps a kafka writer.
func NewKafkaPublisher(writer messageWriter, topic string, logger *logging.Logger) *KafkaPublisher {
	if writer == nil {
		panic("events: kafka writer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// Publish sends one envelope.
func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	ctx, span := tracer.Start(ctx, "events.kafka.publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.destination", p.topic),
		attribute.String("event.type", env.EventType),
	)

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(env.Aggregate),
		Value: data,
		Time:  time.UnixMicro(env.TimestampMicros).UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID.String())},
			{Key: "schema_version", Value: []byte(strconv.Itoa(env.SchemaVersion))},
		},
	}
	if env.Source != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "source", Value: []byte(env.Source)})
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		return fmt.Errorf("events: kafka write: %w", err)
	}
	p.logger.Debug("event published", "event_type", env.EventType, "event_id", env.EventID, "topic", p.topic)
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every envelope; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Envelope) error { return nil }
func (NoopPublisher) Close() error                           { return nil }

// LeadSource is the envelope source stamped on lead events.
const LeadSource = "customers-api"

// LeadHook publishes lead.created.v1 after a lead is stored.
type LeadHook struct {
	publisher Publisher
	source    string
}

// NewLeadHook adapts a Publisher to the leads handler hook.
func NewLeadHook(p Publisher) *LeadHook {
	return &LeadHook{publisher: p, source: LeadSource}
}

func (h *LeadHook) Name() string { return "events" }

// LeadCreated wraps the lead in an envelope and publishes it. The request id
// of the originating POST, when present, becomes the correlation id.
func (h *LeadHook) LeadCreated(ctx context.Context, lead *leads.Lead) error {
	env, err := NewEnvelope(leadAggregate(lead), chimw.GetReqID(ctx), NewLeadCreated(lead), WithSource(h.source))
	if err != nil {
		return err
	}
	return h.publisher.Publish(ctx, env)
}
