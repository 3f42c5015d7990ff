package service

import (
	"context"
	"strings"
	"time"

	"schedly/internal/domain"
	"schedly/internal/models"
)

// CatalogService manages the logged-in provider's services.
type CatalogService struct {
	gw  domain.Gateway
	now func() time.Time
}

func NewCatalogService(gw domain.Gateway) *CatalogService {
	return &CatalogService{gw: gw, now: time.Now}
}

func (s *CatalogService) Save(ctx context.Context, session Session, service *models.Service) (*models.Service, error) {
	if !session.Authenticated() {
		return nil, invalid("session", "You must be logged in.")
	}
	service.Title = strings.TrimSpace(service.Title)
	service.Price = strings.TrimSpace(service.Price)
	if service.Title == "" {
		return nil, invalid("title", "Title is required.")
	}
	if service.Price == "" {
		return nil, invalid("price", "Price is required.")
	}

	service.UserID = session.UserID()
	if service.ID == "" && service.CreatedAt == "" {
		service.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	return s.gw.SaveService(ctx, service)
}

// BookingLink returns the public path customers use to book service id.
func BookingLink(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/book/" + id
}

// PaymentLink returns the public path customers use to pay appointment id.
func PaymentLink(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/pay/" + id
}
