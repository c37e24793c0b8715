package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"wagerbot/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeGameResolved   EventType = "game_resolved"
	EventTypeSessionExpired EventType = "session_expired"
)

// AllEventTypes lists every event the engine emits
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeAccountCreated,
	EventTypeGameResolved,
	EventTypeSessionExpired,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64                  `json:"user_id"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	ChangeAmount    int64                  `json:"change_amount"`
	TransactionType models.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent is emitted when an account is lazily created
type AccountCreatedEvent struct {
	UserID         int64 `json:"user_id"`
	InitialBalance int64 `json:"initial_balance"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// GameResolvedEvent is emitted once per settled game
type GameResolvedEvent struct {
	SessionID  string          `json:"session_id,omitempty"`
	UserID     int64           `json:"user_id"`
	Game       models.GameType `json:"game"`
	Bet        int64           `json:"bet"`
	Outcome    models.Outcome  `json:"outcome"`
	Payout     int64           `json:"payout"`
	NewBalance int64           `json:"new_balance"`
}

func (e GameResolvedEvent) Type() EventType {
	return EventTypeGameResolved
}

// SessionExpiredEvent is emitted when an idle session is reclaimed
type SessionExpiredEvent struct {
	SessionID string          `json:"session_id"`
	UserID    int64           `json:"user_id"`
	Game      models.GameType `json:"game"`
	Bet       int64           `json:"bet"`
	Policy    string          `json:"policy"`
	Settled   bool            `json:"settled"`
}

func (e SessionExpiredEvent) Type() EventType {
	return EventTypeSessionExpired
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run on
// their own goroutines and a panicking handler is logged, not propagated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised during one ledger operation and
// releases them to the underlying bus only once the operation succeeded.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the number of stashed events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush emits every pending event. Called after the storage write succeeded.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	if b.real == nil {
		b.pending = nil
		return nil
	}

	// Handlers outlive the request, so they get a detached context
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events after a failed write
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
