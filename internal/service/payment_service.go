package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"schedly/internal/domain"
	"schedly/internal/events"
	"schedly/internal/models"

	"github.com/rs/zerolog"
)

const payPalBaseURL = "https://paypal.me"

// PaymentService records payments from the public payment page.
type PaymentService struct {
	gw       domain.Gateway
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewPaymentService(gw domain.Gateway, eventBus domain.EventPublisher, logger *zerolog.Logger) *PaymentService {
	return &PaymentService{gw: gw, eventBus: eventBus, logger: logger}
}

func (s *PaymentService) PayCash(ctx context.Context, id string) (*models.Appointment, error) {
	return s.markPaid(ctx, id, models.PaymentMethodCash)
}

// ConfirmPayPal marks the appointment paid once the customer reports the
// PayPal payment as done.
func (s *PaymentService) ConfirmPayPal(ctx context.Context, id string) (*models.Appointment, error) {
	return s.markPaid(ctx, id, models.PaymentMethodPayPal)
}

// PayPalLink builds https://paypal.me/<handle>/<price> from the provider's
// handle and the service price.
func (s *PaymentService) PayPalLink(ctx context.Context, id string) (string, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	handle := strings.TrimSpace(appointment.PayPalHandle)
	if handle == "" {
		return "", ErrNoPayPalHandle
	}

	service, err := s.gw.GetService(ctx, appointment.ServiceID)
	if err != nil {
		return "", err
	}
	if service == nil {
		return "", ErrServiceNotFound
	}

	return fmt.Sprintf("%s/%s/%s", payPalBaseURL, url.PathEscape(handle), url.PathEscape(strings.TrimSpace(service.Price))), nil
}

func (s *PaymentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, err := s.gw.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

func (s *PaymentService) markPaid(ctx context.Context, id string, method models.PaymentMethod) (*models.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.IsPaid() {
		return appointment, nil
	}

	appointment.PaymentStatus = models.PaymentPaid
	appointment.PaymentMethod = method
	saved, err := s.gw.SaveAppointment(ctx, appointment)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("appointment_id", saved.ID).Str("method", string(method)).Msg("appointment paid")
	publishAppointment(s.eventBus, s.logger, events.EventAppointmentPaid, saved)
	return saved, nil
}
