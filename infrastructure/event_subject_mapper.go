package infrastructure

import (
	"fmt"

	"wagerbot/events"
)

const (
	SubjectBalanceChanged = "accounts.balance_changed"
	SubjectAccountCreated = "accounts.created"
	SubjectGameResolved   = "wagers.game.resolved"
	SubjectSessionExpired = "wagers.session.expired"
)

// EventSubjectMapper maps domain events to NATS subjects
type EventSubjectMapper struct{}

func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return SubjectBalanceChanged
	case events.EventTypeAccountCreated:
		return SubjectAccountCreated
	case events.EventTypeGameResolved:
		return SubjectGameResolved
	case events.EventTypeSessionExpired:
		return SubjectSessionExpired
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectBalanceChanged:
		return events.EventTypeBalanceChange
	case SubjectAccountCreated:
		return events.EventTypeAccountCreated
	case SubjectGameResolved:
		return events.EventTypeGameResolved
	case SubjectSessionExpired:
		return events.EventTypeSessionExpired
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectBalanceChanged,
		SubjectAccountCreated,
		SubjectGameResolved,
		SubjectSessionExpired,
	}
}
