package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservationCreated   = "reservation_created"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationCompleted = "reservation_completed"
	EventTicketSold           = "ticket_sold"
	EventPaymentRegistered    = "payment_registered"
	EventSessionExpired       = "session_expired"
)

// ReservationEventPayload is the minimal reservation snapshot for
// event consumers.
type ReservationEventPayload struct {
	ReservationID int64     `json:"reservation_id"`
	OwnerID       int64     `json:"owner_id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	DateStart     time.Time `json:"date_start"`
	Headcount     int       `json:"headcount"`
	TotalPrice    int64     `json:"total_price"`
	ChangedBy     int64     `json:"changed_by,omitempty"`
}

// TicketEventPayload is published on ticket sales, walk-in or online.
type TicketEventPayload struct {
	TicketID   int64     `json:"ticket_id"`
	Date       time.Time `json:"date"`
	Headcount  int       `json:"headcount"`
	TotalPrice int64     `json:"total_price"`
	WalkIn     bool      `json:"walk_in"`
}

// SessionEventPayload notes which backend request saw the session die.
type SessionEventPayload struct {
	RequestID string `json:"request_id"`
	Path      string `json:"path"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
