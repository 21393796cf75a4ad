package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserRegistered    EventType = "user_registered"
	EventTypeTransferCommitted EventType = "transfer_committed"
	EventTypeVoteRecorded      EventType = "vote_recorded"
	EventTypeSeasonActivated   EventType = "season_activated"
	EventTypeSeasonDeactivated EventType = "season_deactivated"
)

// AllEventTypes lists every event type the ledger emits
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeUserRegistered,
		EventTypeTransferCommitted,
		EventTypeVoteRecorded,
		EventTypeSeasonActivated,
		EventTypeSeasonDeactivated,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserRegisteredEvent is emitted when a member is seen for the first time
type UserRegisteredEvent struct {
	DiscordID      int64  `json:"discord_id"`
	Username       string `json:"username"`
	InitialBalance int64  `json:"initial_balance"`
	Approved       bool   `json:"approved"`
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// TransferCommittedEvent is emitted after kudos have left the sender's balance
type TransferCommittedEvent struct {
	TransactionID int64     `json:"transaction_id"`
	SenderID      int64     `json:"sender_id"`
	RecipientID   int64     `json:"recipient_id"`
	Amount        int64     `json:"amount"`
	SeasonID      int64     `json:"season_id"`
	NewBalance    int64     `json:"new_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

func (e TransferCommittedEvent) Type() EventType {
	return EventTypeTransferCommitted
}

// VoteRecordedEvent is emitted for every vote insert or overwrite
type VoteRecordedEvent struct {
	VoteID      int64 `json:"vote_id"`
	VoterID     int64 `json:"voter_id"`
	QuestionID  int64 `json:"question_id"`
	CandidateID int64 `json:"candidate_id"`
	SeasonID    int64 `json:"season_id"`
	Changed     bool  `json:"changed"` // true when an earlier answer was overwritten
}

func (e VoteRecordedEvent) Type() EventType {
	return EventTypeVoteRecorded
}

// SeasonActivatedEvent is emitted after a season becomes active and balances were refilled
type SeasonActivatedEvent struct {
	SeasonID       int64  `json:"season_id"`
	Name           string `json:"name"`
	DefaultBalance int64  `json:"default_balance"`
	UsersReset     int64  `json:"users_reset"`
}

func (e SeasonActivatedEvent) Type() EventType {
	return EventTypeSeasonActivated
}

// SeasonDeactivatedEvent is emitted when the active flag of a season is cleared
type SeasonDeactivatedEvent struct {
	SeasonID int64  `json:"season_id"`
	Name     string `json:"name"`
}

func (e SeasonDeactivatedEvent) Type() EventType {
	return EventTypeSeasonDeactivated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
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

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes() {
		b.Subscribe(eventType, handler)
	}
}

// Emit hands the event to every registered handler. Handlers run on their own
// goroutines and a panicking handler is logged, never propagated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		b.inflight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
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

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.inflight.Wait()
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits. A rollback discards them.
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

// Flush emits pending events on the real bus. Called after a successful commit.
func (b *TransactionalBus) Flush() {
	// Handlers outlive the request, so they get a fresh context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("eventCount", len(b.pending)).Debug("Flushed transactional events")
	b.pending = nil
}

// Discard drops pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for a commit
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
