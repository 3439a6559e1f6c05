package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whrealtors/realty-web/internal/leads"
	"github.com/whrealtors/realty-web/pkg/logging"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestLeadHookPublishesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	pub := NewKafkaPublisher(w, "leads.created", logging.New("error"))
	hook := NewLeadHook(pub)

	created := time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)
	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-123")
	err := hook.LeadCreated(ctx, &leads.Lead{
		ID:        42,
		Name:      "Jane Smith",
		Email:     "jane@example.com",
		ProjectID: "sunrise-towers",
		CreatedAt: created,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "project:sunrise-towers", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "lead.created.v1", string(msg.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "lead.created.v1", env.EventType)
	assert.Equal(t, "req-123", env.CorrelationID)
	assert.Equal(t, LeadSource, env.Source)
	assert.Equal(t, 1, env.SchemaVersion)
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "customers-api", headers["source"])
	assert.Equal(t, "1", headers["schema_version"])
	var payload LeadCreatedV1
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, LeadCreatedV1{
		LeadID:    42,
		ProjectID: "sunrise-towers",
		Name:      "Jane Smith",
		Email:     "jane@example.com",
		CreatedAt: created,
	}, payload)

	require.NoError(t, pub.Close())
	assert.True(t, w.closed)
}

func TestLeadAggregateWithoutProject(t *testing.T) {
	assert.Equal(t, "lead:7", leadAggregate(&leads.Lead{ID: 7}))
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	pub := NewKafkaPublisher(w, "leads.created", logging.New("error"))

	err := NewLeadHook(pub).LeadCreated(context.Background(), &leads.Lead{ID: 1, Name: "a", Email: "a@x.in"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events: kafka write")
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"kafka-1:9092", "kafka-2:9092"}, "leads.created")
	defer w.Close()
	assert.Equal(t, "leads.created", w.Topic)
	assert.Contains(t, w.Addr.String(), "kafka-1:9092")
	assert.Equal(t, "tcp", w.Addr.Network())
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Envelope{}))
	assert.NoError(t, p.Close())
}
