package api

import (
	"context"

	"schedly/internal/models"
)

func (c *Client) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	return list[models.Appointment](ctx, c, appointmentsResource)
}

func (c *Client) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	return get[models.Appointment](ctx, c, appointmentsResource, id)
}

// SaveAppointment leaves out the paypal_handle the backend attaches on reads;
// it belongs to the owner's profile, not the appointment.
func (c *Client) SaveAppointment(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	body := *appointment
	body.PayPalHandle = ""
	return save(ctx, c, appointmentsResource, body.ID, &body)
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return remove(ctx, c, appointmentsResource, id)
}
