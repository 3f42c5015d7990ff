package api

import (
	"context"

	"schedly/internal/models"
)

// ListServices returns the services of the session's user.
func (c *Client) ListServices(ctx context.Context) ([]*models.Service, error) {
	return list[models.Service](ctx, c, servicesResource)
}

// GetService fails with "Service not found" on any non-2xx status.
func (c *Client) GetService(ctx context.Context, id string) (*models.Service, error) {
	return get[models.Service](ctx, c, servicesResource, id)
}

// SaveService updates the service when it has an ID and creates it otherwise.
func (c *Client) SaveService(ctx context.Context, service *models.Service) (*models.Service, error) {
	return save(ctx, c, servicesResource, service.ID, service)
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	return remove(ctx, c, servicesResource, id)
}
