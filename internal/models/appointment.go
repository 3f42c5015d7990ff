package models

import "time"

// Appointment is a customer booking against a Service.
type Appointment struct {
	ID            string            `json:"id,omitempty"`
	UserID        string            `json:"userId"`
	ServiceID     string            `json:"serviceId"`
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	CustomerEmail string            `json:"customerEmail"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	Status        AppointmentStatus `json:"status"`
	PaymentStatus PaymentStatus     `json:"paymentStatus"`
	PaymentMethod PaymentMethod     `json:"paymentMethod,omitempty"`
	Notes         string            `json:"notes"`
	CreatedAt     string            `json:"createdAt"`

	// PayPalHandle is attached by the backend on the public payment page.
	PayPalHandle string `json:"paypal_handle,omitempty"`
}

func (a *Appointment) GetID() string   { return a.ID }
func (a *Appointment) SetID(id string) { a.ID = id }

// StartsAt combines Date and Time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if a.Time == "" {
		return time.ParseInLocation(DateLayout, a.Date, loc)
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, loc)
}

// IsPaid reports whether payment has been recorded.
func (a *Appointment) IsPaid() bool {
	return a.PaymentStatus == PaymentPaid
}
