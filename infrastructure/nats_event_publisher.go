package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"wagerbot/events"
)

const sourceService = "wagerbot"

// EventPublisher sends domain events out of process
type EventPublisher interface {
	Publish(event events.Event) error
}

// PublishObserver is told about every event that left the process
type PublishObserver interface {
	RecordNATSMessagePublished(eventType string)
}

// EventEnvelope wraps every published payload
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope serializes event into a fresh envelope
func NewEventEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}, nil
}

// NATSEventPublisher implements EventPublisher using NATS
type NATSEventPublisher struct {
	natsClient    *NATSClient
	subjectMapper *EventSubjectMapper
	observer      PublishObserver
}

// NewNATSEventPublisher creates a new NATS event publisher. observer may be nil.
func NewNATSEventPublisher(natsClient *NATSClient, subjectMapper *EventSubjectMapper, observer PublishObserver) *NATSEventPublisher {
	return &NATSEventPublisher{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
		observer:      observer,
	}
}

// Publish publishes an event to NATS using the appropriate subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	subject := p.subjectMapper.MapEventToSubject(event)

	envelope, err := NewEventEnvelope(event)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.natsClient.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if p.observer != nil {
		p.observer.RecordNATSMessagePublished(string(event.Type()))
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// EnsureDomainEventStream ensures the stream covering every published subject exists
func (p *NATSEventPublisher) EnsureDomainEventStream() error {
	return p.natsClient.ensureStream("wagerbot_events", p.subjectMapper.GetAllSubjects())
}

// BridgeBus forwards every domain event raised on bus to publisher
func BridgeBus(bus *events.Bus, publisher EventPublisher) {
	for _, eventType := range events.AllEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) {
			if err := publisher.Publish(event); err != nil {
				log.WithFields(log.Fields{
					"eventType": event.Type(),
					"error":     err,
				}).Error("Failed to forward event")
			}
		})
	}
}
