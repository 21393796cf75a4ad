package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"kudos/events"
)

// EventsStreamName is the JetStream stream the forwarder publishes into
const EventsStreamName = "kudos_events"

// EventEnvelope wraps a domain event for the message bus
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventForwarder republishes committed domain events to NATS
type NATSEventForwarder struct {
	publisher MessagePublisher
	prefix    string
	now       func() time.Time
	published func(eventType string)
}

// NewNATSEventForwarder creates a forwarder publishing to <prefix>.<event_type>
func NewNATSEventForwarder(publisher MessagePublisher, prefix string) *NATSEventForwarder {
	return &NATSEventForwarder{
		publisher: publisher,
		prefix:    prefix,
		now:       time.Now,
	}
}

// OnPublished registers a callback run after each successful publish
func (f *NATSEventForwarder) OnPublished(fn func(eventType string)) {
	f.published = fn
}

// Subject returns the subject an event type is published on
func (f *NATSEventForwarder) Subject(eventType events.EventType) string {
	return fmt.Sprintf("%s.%s", f.prefix, eventType)
}

// Subjects lists every subject the forwarder can publish on
func (f *NATSEventForwarder) Subjects() []string {
	types := events.AllEventTypes()
	subjects := make([]string, 0, len(types))
	for _, t := range types {
		subjects = append(subjects, f.Subject(t))
	}
	return subjects
}

// Register subscribes the forwarder to every event type on the bus
func (f *NATSEventForwarder) Register(bus *events.Bus) {
	bus.SubscribeAll(f.Handle)
}

// Handle publishes a single event. Failures are logged; the ledger never
// depends on delivery.
func (f *NATSEventForwarder) Handle(ctx context.Context, event events.Event) {
	if err := f.Forward(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

// Forward wraps the event in an envelope and publishes it
func (f *NATSEventForwarder) Forward(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     f.now().UTC(),
		SourceService: "kudos",
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := f.Subject(event.Type())
	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if f.published != nil {
		f.published(envelope.EventType)
	}

	log.WithFields(log.Fields{
		"eventType": envelope.EventType,
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Forwarded event to NATS")
	return nil
}
