package models

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks whether an appointment has been paid for.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// PaymentMethod is empty until a payment is recorded.
type PaymentMethod string

const (
	PaymentMethodNone   PaymentMethod = ""
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodStripe PaymentMethod = "stripe"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodNone, PaymentMethodCash, PaymentMethodPayPal, PaymentMethodStripe:
		return true
	}
	return false
}

const (
	// DateLayout is the ISO date format used by appointment dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the time-of-day format used by appointment times.
	TimeLayout = "15:04"

	// LocalIDPrefix marks identifiers synthesized while the API was unreachable.
	LocalIDPrefix = "local-"
)

// Entity is implemented by records that carry a string identifier.
type Entity interface {
	GetID() string
	SetID(id string)
}
