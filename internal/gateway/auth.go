package gateway

import (
	"context"

	"schedly/internal/models"
)

// Auth calls are relayed as they are and users are never mirrored. A new
// session user takes over the mirror; logout empties it.

func (g *Gateway) Signup(ctx context.Context, email, password string) (*models.User, error) {
	user, err := g.remote.Signup(ctx, email, password)
	if err == nil && user != nil {
		g.switchOwner(ctx, user.ID)
	}
	return user, err
}

func (g *Gateway) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := g.remote.Login(ctx, email, password)
	if err == nil && user != nil {
		g.switchOwner(ctx, user.ID)
	}
	return user, err
}

// CurrentUser hands the mirror over when the cookie names a different user
// than the one it was filled for. A nil user (logged out or offline) leaves
// it alone.
func (g *Gateway) CurrentUser(ctx context.Context) *models.User {
	user := g.remote.CurrentUser(ctx)
	if user != nil {
		g.switchOwner(ctx, user.ID)
	}
	return user
}

func (g *Gateway) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	return g.remote.UpdateProfile(ctx, update)
}

func (g *Gateway) Logout(ctx context.Context) {
	g.remote.Logout(ctx)
	if g.owner != nil {
		g.purge(ctx)
		g.owner.Clear(ctx)
	}
}
