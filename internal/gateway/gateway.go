// Package gateway composes the REST client with the local cache mirror.
// The API is always tried first. A successful call refreshes the mirror;
// a network failure is served from the mirror instead.
package gateway

import (
	"context"

	"schedly/internal/api"
	"schedly/internal/domain"
	"schedly/internal/metrics"
	"schedly/internal/mirror"
	"schedly/internal/models"

	"github.com/rs/zerolog"
)

const (
	resourceServices     = "services"
	resourceAppointments = "appointments"
)

// Remote is the REST API surface the gateway wraps.
type Remote interface {
	domain.Gateway
	domain.AuthGateway
}

type Gateway struct {
	remote       Remote
	services     *mirror.Collection[models.Service, *models.Service]
	appointments *mirror.Collection[models.Appointment, *models.Appointment]
	owner        *mirror.Owner
	logger       *zerolog.Logger
}

var (
	_ domain.Gateway     = (*Gateway)(nil)
	_ domain.AuthGateway = (*Gateway)(nil)
)

// New builds a gateway. With a nil store there is no mirror and network
// errors reach the caller.
func New(remote Remote, store domain.MirrorStore, namespace string, logger *zerolog.Logger) *Gateway {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	g := &Gateway{remote: remote, logger: logger}
	if store != nil {
		g.services = mirror.NewCollection[models.Service](store, namespace, resourceServices, logger)
		g.appointments = mirror.NewCollection[models.Appointment](store, namespace, resourceAppointments, logger)
		g.owner = mirror.NewOwner(store, namespace, logger)
	}
	return g
}

// fallback reports whether err should be served from the mirror.
func (g *Gateway) fallback(err error, resource, op string) bool {
	if g.services == nil || !api.IsNetworkError(err) {
		return false
	}
	g.logger.Warn().Err(err).Str("resource", resource).Str("op", op).Msg("fallback")
	metrics.IncFallback(resource, op)
	return true
}

// mirrors reports whether a record owned by userID may enter the mirror.
// Public reads of other providers' records stay out of it.
func (g *Gateway) mirrors(ctx context.Context, userID string) bool {
	if g.owner == nil {
		return false
	}
	owner := g.owner.Get(ctx)
	return owner == "" || owner == userID
}

// switchOwner purges the mirror when the session belongs to someone other
// than the recorded owner.
func (g *Gateway) switchOwner(ctx context.Context, userID string) {
	if g.owner == nil || userID == "" || g.owner.Get(ctx) == userID {
		return
	}
	g.purge(ctx)
	g.owner.Set(ctx, userID)
	g.logger.Debug().Str("user_id", userID).Msg("mirror owner switched")
}

func (g *Gateway) purge(ctx context.Context) {
	g.services.Clear(ctx)
	g.appointments.Clear(ctx)
}

func (g *Gateway) ListServices(ctx context.Context) ([]*models.Service, error) {
	items, err := g.remote.ListServices(ctx)
	if err != nil {
		if g.fallback(err, resourceServices, "list") {
			return g.services.All(ctx), nil
		}
		return nil, err
	}
	if g.services != nil {
		g.services.Replace(ctx, items)
	}
	return items, nil
}

// GetService returns (nil, nil) when the API is unreachable and the
// service was never mirrored.
func (g *Gateway) GetService(ctx context.Context, id string) (*models.Service, error) {
	item, err := g.remote.GetService(ctx, id)
	if err != nil {
		if g.fallback(err, resourceServices, "get") {
			return g.services.Find(ctx, id), nil
		}
		return nil, err
	}
	if item != nil && g.mirrors(ctx, item.UserID) {
		g.services.Put(ctx, item)
	}
	return item, nil
}

func (g *Gateway) SaveService(ctx context.Context, service *models.Service) (*models.Service, error) {
	item, err := g.remote.SaveService(ctx, service)
	if err != nil {
		if g.fallback(err, resourceServices, "save") {
			return g.services.SaveLocal(ctx, service), nil
		}
		return nil, err
	}
	if item != nil && g.mirrors(ctx, item.UserID) {
		g.services.Put(ctx, item)
	}
	return item, nil
}

func (g *Gateway) DeleteService(ctx context.Context, id string) error {
	if err := g.remote.DeleteService(ctx, id); err != nil {
		if !g.fallback(err, resourceServices, "delete") {
			return err
		}
	}
	if g.services != nil {
		g.services.Remove(ctx, id)
	}
	return nil
}

func (g *Gateway) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	items, err := g.remote.ListAppointments(ctx)
	if err != nil {
		if g.fallback(err, resourceAppointments, "list") {
			return g.appointments.All(ctx), nil
		}
		return nil, err
	}
	if g.appointments != nil {
		g.appointments.Replace(ctx, items)
	}
	return items, nil
}

func (g *Gateway) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	item, err := g.remote.GetAppointment(ctx, id)
	if err != nil {
		if g.fallback(err, resourceAppointments, "get") {
			return g.appointments.Find(ctx, id), nil
		}
		return nil, err
	}
	if item != nil && g.mirrors(ctx, item.UserID) {
		g.appointments.Put(ctx, item)
	}
	return item, nil
}

func (g *Gateway) SaveAppointment(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	item, err := g.remote.SaveAppointment(ctx, appointment)
	if err != nil {
		if g.fallback(err, resourceAppointments, "save") {
			return g.appointments.SaveLocal(ctx, appointment), nil
		}
		return nil, err
	}
	if item != nil && g.mirrors(ctx, item.UserID) {
		g.appointments.Put(ctx, item)
	}
	return item, nil
}

func (g *Gateway) DeleteAppointment(ctx context.Context, id string) error {
	if err := g.remote.DeleteAppointment(ctx, id); err != nil {
		if !g.fallback(err, resourceAppointments, "delete") {
			return err
		}
	}
	if g.appointments != nil {
		g.appointments.Remove(ctx, id)
	}
	return nil
}
