package events

import (
	"encoding/json"
	"sync"
	"time"

	"bookvideolink/internal/models"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingAmended   = "booking_amended"
	EventBookingRequested = "booking_requested"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEvents lists every booking event type in publishing order of a booking's life.
var BookingEvents = []string{
	EventBookingCreated,
	EventBookingAmended,
	EventBookingRequested,
	EventBookingCancelled,
}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID      int64              `json:"booking_id,omitempty"`
	BookingType    models.BookingType `json:"booking_type"`
	AgencyCode     string             `json:"agency_code,omitempty"`
	PrisonCode     string             `json:"prison_code,omitempty"`
	PrisonerNumber string             `json:"prisoner_number,omitempty"`
	Date           string             `json:"date,omitempty"`
	StartTime      string             `json:"start_time,omitempty"`
	ChangedBy      string             `json:"changed_by"`
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

// Publish notifies subscribers of the event type and returns the first handler error.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var firstErr error
	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
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

	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}

// DecodeBooking reads a BookingEventPayload from the event.
func (e *Event) DecodeBooking() (BookingEventPayload, error) {
	var p BookingEventPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}
