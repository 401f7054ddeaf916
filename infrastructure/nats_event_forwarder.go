package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"guildkeeper/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// SubjectPrefix is prepended to the event type to form a subject
	SubjectPrefix = "guildkeeper.events."

	sourceService  = "guildkeeper"
	publishTimeout = 5 * time.Second
)

// EventSubscriber is the part of the event bus forwarders attach to
type EventSubscriber interface {
	SubscribeAll(handler events.Handler)
}

// EventForwarder copies bus events onto an external message bus
type EventForwarder interface {
	Attach(bus EventSubscriber)
}

// EventEnvelope wraps a forwarded event
type EventEnvelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
}

// SubjectFor returns the subject an event type is published on
func SubjectFor(eventType events.EventType) string {
	return SubjectPrefix + string(eventType)
}

// EventSubjects lists every subject the forwarder may publish on
func EventSubjects() []string {
	subjects := make([]string, 0, len(events.AllEventTypes))
	for _, t := range events.AllEventTypes {
		subjects = append(subjects, SubjectFor(t))
	}
	return subjects
}

// NATSEventForwarder publishes every bus event as a JSON envelope
type NATSEventForwarder struct {
	publisher MessagePublisher
	now       func() time.Time
}

// NewNATSEventForwarder creates a forwarder over publisher
func NewNATSEventForwarder(publisher MessagePublisher) *NATSEventForwarder {
	return &NATSEventForwarder{
		publisher: publisher,
		now:       time.Now,
	}
}

// Attach subscribes the forwarder to every event type on the bus
func (f *NATSEventForwarder) Attach(bus EventSubscriber) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		if err := f.Forward(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to forward event")
		}
	})
}

// Forward publishes one event
func (f *NATSEventForwarder) Forward(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:   uuid.New().String(),
		EventType: string(event.Type()),
		Timestamp: f.now().UTC(),
		Source:    sourceService,
		Payload:   payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	// The emitting handler may already be done with its context
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	subject := SubjectFor(event.Type())
	if err := f.publisher.Publish(pubCtx, subject, data); err != nil {
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Forwarded event to NATS")
	return nil
}

// NoopEventForwarder is used when no message bus is configured
type NoopEventForwarder struct{}

// NewNoopEventForwarder creates a new no-op forwarder
func NewNoopEventForwarder() *NoopEventForwarder {
	return &NoopEventForwarder{}
}

// Attach does nothing
func (n *NoopEventForwarder) Attach(bus EventSubscriber) {}
