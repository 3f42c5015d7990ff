package service

import (
	"context"
	"strings"
	"time"

	"schedly/internal/domain"
	"schedly/internal/events"
	"schedly/internal/models"

	"github.com/rs/zerolog"
)

// BookingRequest is what a customer submits on the public booking page.
type BookingRequest struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Date          string
	Time          string
	Notes         string
}

type BookingService struct {
	gw       domain.Gateway
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(gw domain.Gateway, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		gw:       gw,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// ValidateBookingDate rejects malformed dates and times and dates before
// today.
func (s *BookingService) ValidateBookingDate(date, clock string) error {
	day, err := time.ParseInLocation(models.DateLayout, date, time.Local)
	if err != nil {
		return invalid("date", "Date must be in YYYY-MM-DD format.")
	}
	if _, err := time.Parse(models.TimeLayout, clock); err != nil {
		return invalid("time", "Time must be in HH:MM format.")
	}

	now := s.now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if day.Before(today) {
		return invalid("date", "Date cannot be in the past.")
	}
	return nil
}

// Book creates a scheduled, unpaid appointment for serviceID on behalf of
// the service's owner. No session is needed.
func (s *BookingService) Book(ctx context.Context, serviceID string, req BookingRequest) (*models.Appointment, error) {
	req = trimRequest(req)
	switch {
	case req.CustomerName == "":
		return nil, invalid("customerName", "Name is required.")
	case req.CustomerPhone == "":
		return nil, invalid("customerPhone", "Phone is required.")
	case req.Date == "":
		return nil, invalid("date", "Date is required.")
	case req.Time == "":
		return nil, invalid("time", "Time is required.")
	}
	if err := s.ValidateBookingDate(req.Date, req.Time); err != nil {
		return nil, err
	}

	service, err := s.gw.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if service == nil {
		return nil, ErrServiceNotFound
	}

	appointment := &models.Appointment{
		UserID:        service.UserID,
		ServiceID:     service.ID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Date:          req.Date,
		Time:          req.Time,
		Status:        models.StatusScheduled,
		PaymentStatus: models.PaymentPending,
		Notes:         req.Notes,
		CreatedAt:     s.now().UTC().Format(time.RFC3339),
	}

	saved, err := s.gw.SaveAppointment(ctx, appointment)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("appointment_id", saved.ID).Str("service_id", service.ID).Msg("appointment booked")
	publishAppointment(s.eventBus, s.logger, events.EventAppointmentBooked, saved)
	return saved, nil
}

// Schedule saves an appointment entered by the logged-in provider. New
// appointments default to scheduled and pending.
func (s *BookingService) Schedule(ctx context.Context, session Session, appointment *models.Appointment) (*models.Appointment, error) {
	if !session.Authenticated() {
		return nil, invalid("session", "You must be logged in.")
	}
	if strings.TrimSpace(appointment.ServiceID) == "" {
		return nil, invalid("serviceId", "Service is required.")
	}
	if strings.TrimSpace(appointment.CustomerName) == "" {
		return nil, invalid("customerName", "Name is required.")
	}
	if appointment.Date == "" || appointment.Time == "" {
		return nil, invalid("date", "Date and time are required.")
	}
	if appointment.Status == "" {
		appointment.Status = models.StatusScheduled
	}
	if appointment.PaymentStatus == "" {
		appointment.PaymentStatus = models.PaymentPending
	}
	if !appointment.Status.Valid() {
		return nil, invalid("status", "Unknown status.")
	}
	if !appointment.PaymentStatus.Valid() || !appointment.PaymentMethod.Valid() {
		return nil, invalid("paymentStatus", "Unknown payment status or method.")
	}

	appointment.UserID = session.UserID()
	if appointment.ID == "" && appointment.CreatedAt == "" {
		appointment.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	return s.gw.SaveAppointment(ctx, appointment)
}

// SetStatus moves an appointment to status and saves it.
func (s *BookingService) SetStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, invalid("status", "Unknown status.")
	}

	appointment, err := s.gw.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.Status == status {
		return appointment, nil
	}

	appointment.Status = status
	saved, err := s.gw.SaveAppointment(ctx, appointment)
	if err != nil {
		return nil, err
	}
	publishAppointment(s.eventBus, s.logger, events.EventAppointmentStatusChanged, saved)
	return saved, nil
}

func trimRequest(req BookingRequest) BookingRequest {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Notes = strings.TrimSpace(req.Notes)
	return req
}

func publishAppointment(bus domain.EventPublisher, logger *zerolog.Logger, eventType string, appointment *models.Appointment) {
	if bus == nil {
		return
	}
	if err := bus.PublishJSON(eventType, events.NewAppointmentPayload(appointment)); err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Str("appointment_id", appointment.ID).Msg("publish event error")
	}
}
