package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"schedly/internal/models"
)

const (
	EventAppointmentBooked        = "appointment_booked"
	EventAppointmentStatusChanged = "appointment_status_changed"
	EventAppointmentPaid          = "appointment_paid"
)

// AppointmentEventPayload is the appointment snapshot handed to subscribers.
type AppointmentEventPayload struct {
	AppointmentID string                   `json:"appointment_id"`
	ServiceID     string                   `json:"service_id"`
	OwnerID       string                   `json:"owner_id"`
	CustomerName  string                   `json:"customer_name"`
	Date          string                   `json:"date"`
	Time          string                   `json:"time"`
	Status        models.AppointmentStatus `json:"status"`
	PaymentStatus models.PaymentStatus     `json:"payment_status"`
	PaymentMethod models.PaymentMethod     `json:"payment_method,omitempty"`
}

// NewAppointmentPayload snapshots a.
func NewAppointmentPayload(a *models.Appointment) AppointmentEventPayload {
	return AppointmentEventPayload{
		AppointmentID: a.ID,
		ServiceID:     a.ServiceID,
		OwnerID:       a.UserID,
		CustomerName:  a.CustomerName,
		Date:          a.Date,
		Time:          a.Time,
		Status:        a.Status,
		PaymentStatus: a.PaymentStatus,
		PaymentMethod: a.PaymentMethod,
	}
}

// Event is one published occurrence with a JSON payload.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
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

// Publish runs every subscriber of the event type in registration order.
// All handlers run even if one fails; their errors are joined.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishJSON serializes the payload and publishes an event. A nil bus
// drops the event.
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
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
