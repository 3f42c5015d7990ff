package domain

import (
	"context"

	"schedly/internal/models"
)

// Gateway is the data-access surface for services and appointments.
// Both the REST client and the mirror-backed failover gateway satisfy it.
type Gateway interface {
	ListServices(ctx context.Context) ([]*models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	SaveService(ctx context.Context, service *models.Service) (*models.Service, error)
	DeleteService(ctx context.Context, id string) error

	ListAppointments(ctx context.Context) ([]*models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	SaveAppointment(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
}

// AuthGateway relays credentials to the backend session endpoints.
type AuthGateway interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	CurrentUser(ctx context.Context) *models.User
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	Logout(ctx context.Context)
}

// MirrorStore is the key-value persistence behind the local cache mirror.
// Load reports ok=false for a missing key.
type MirrorStore interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Store(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
