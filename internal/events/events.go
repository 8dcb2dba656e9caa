package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingRequested     = "booking_requested"
	EventBookingForwarded     = "booking_forwarded"
	EventBookingForwardFailed = "booking_forward_failed"
	EventContactHostRequested = "contact_host_requested"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	Reference string    `json:"reference"`
	VenueID   string    `json:"venue_id"`
	VenueName string    `json:"venue_name,omitempty"`
	UserID    int64     `json:"user_id,omitempty"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	TotalCost float64   `json:"total_cost"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// ContactHostPayload is published when a user asks for a quote-only venue.
type ContactHostPayload struct {
	VenueID   string `json:"venue_id"`
	VenueName string `json:"venue_name"`
	HostID    string `json:"host_id"`
	UserID    int64  `json:"user_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run synchronously
// in subscription order; the first error is returned after all have run.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var first error
	for _, handler := range handlers {
		if err := handler(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	return b.Publish(&event)
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
