package events

import (
	"errors"
	"testing"

	"schedly/internal/models"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventAppointmentBooked, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	appt := &models.Appointment{ID: "a1", ServiceID: "s1", UserID: "u1", CustomerName: "Ann", Status: models.StatusScheduled, PaymentStatus: models.PaymentPending}
	if err := bus.PublishJSON(EventAppointmentBooked, NewAppointmentPayload(appt)); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if received.Type != EventAppointmentBooked {
		t.Errorf("expected type %s, got %s", EventAppointmentBooked, received.Type)
	}

	var decoded AppointmentEventPayload
	if err := received.Decode(&decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.AppointmentID != "a1" || decoded.OwnerID != "u1" || decoded.Status != models.StatusScheduled {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	_ = bus.Publish(&Event{Type: "event"})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	var after bool

	bus.Subscribe("event", func(_ *Event) error { return boom })
	bus.Subscribe("event", func(_ *Event) error { after = true; return nil })

	err := bus.Publish(&Event{Type: "event"})
	if !errors.Is(err, boom) {
		t.Errorf("expected joined handler error, got %v", err)
	}
	if !after {
		t.Errorf("expected later handler to run")
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	if err := bus.Publish(&Event{Type: "unknown"}); err != nil {
		t.Errorf("Publish failed: %v", err)
	}
	if err := bus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}

	var nilBus *EventBus
	if err := nilBus.PublishJSON(EventAppointmentPaid, nil); err != nil {
		t.Errorf("nil bus should drop events, got %v", err)
	}
}

func TestNewJSONEvent(t *testing.T) {
	event, err := NewJSONEvent(EventAppointmentPaid, AppointmentEventPayload{AppointmentID: "a9", PaymentMethod: models.PaymentMethodCash})
	if err != nil {
		t.Fatalf("NewJSONEvent failed: %v", err)
	}
	if event.CreatedAt.IsZero() {
		t.Errorf("expected CreatedAt to be set")
	}

	var decoded AppointmentEventPayload
	if err := event.Decode(&decoded); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if decoded.AppointmentID != "a9" || decoded.PaymentMethod != models.PaymentMethodCash {
		t.Errorf("unexpected payload %+v", decoded)
	}

	if _, err := NewJSONEvent("bad", make(chan int)); err == nil {
		t.Errorf("expected encode error for channel payload")
	}
}
