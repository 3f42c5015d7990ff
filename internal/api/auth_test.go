package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"schedly/internal/api/apitest"
	"schedly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupStartsSession(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	user, err := c.Signup(ctx, "a@b.io", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@b.io", user.Email)
	assert.Empty(t, user.Password)

	me := c.CurrentUser(ctx)
	require.NotNil(t, me)
	assert.Equal(t, user.ID, me.ID)

	assert.NotEqual(t, "secret", string(srv.PasswordHash("a@b.io")))
}

func TestSignupDuplicateUsesBackendMessage(t *testing.T) {
	srv := apitest.NewServer(t)
	ctx := context.Background()

	_, err := newTestClient(t, srv.URL).Signup(ctx, "a@b.io", "secret")
	require.NoError(t, err)

	_, err = newTestClient(t, srv.URL).Signup(ctx, "a@b.io", "other")
	assert.EqualError(t, err, "Email already registered")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestSignupFallbackMessage(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.FailNext(1, http.StatusBadGateway)

	_, err := newTestClient(t, srv.URL).Signup(context.Background(), "a@b.io", "secret")
	// The injected failure carries the status text as its error field.
	assert.EqualError(t, err, http.StatusText(http.StatusBadGateway))
}

func TestLoginWrongPassword(t *testing.T) {
	srv := apitest.NewServer(t)
	ctx := context.Background()
	_, err := newTestClient(t, srv.URL).Signup(ctx, "a@b.io", "secret")
	require.NoError(t, err)

	c := newTestClient(t, srv.URL)
	_, err = c.Login(ctx, "a@b.io", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Nil(t, c.CurrentUser(ctx))

	user, err := c.Login(ctx, "a@b.io", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a@b.io", user.Email)
}

func TestCurrentUserWithoutSession(t *testing.T) {
	srv := apitest.NewServer(t)
	assert.Nil(t, newTestClient(t, srv.URL).CurrentUser(context.Background()))
}

func TestCurrentUserUnreachable(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	assert.Nil(t, c.CurrentUser(context.Background()))
}

func TestUpdateProfile(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedInClient(t, srv)
	ctx := context.Background()

	handle := "annpays"
	user, err := c.UpdateProfile(ctx, models.ProfileUpdate{PayPalHandle: &handle})
	require.NoError(t, err)
	assert.Equal(t, "annpays", user.PayPalHandle)

	_, err = c.UpdateProfile(ctx, models.ProfileUpdate{Password: "newpass"})
	require.NoError(t, err)

	fresh := newTestClient(t, srv.URL)
	_, err = fresh.Login(ctx, "owner@example.com", "newpass")
	require.NoError(t, err)
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	srv := apitest.NewServer(t)
	_, err := newTestClient(t, srv.URL).UpdateProfile(context.Background(), models.ProfileUpdate{Password: "x"})
	assert.EqualError(t, err, "Failed to update profile")
	assert.ErrorIs(t, err, ErrProfile)
}

func TestLogoutEndsSession(t *testing.T) {
	srv := apitest.NewServer(t)
	c := loggedInClient(t, srv)
	ctx := context.Background()

	c.Logout(ctx)
	assert.Nil(t, c.CurrentUser(ctx))
}

func TestLogoutSwallowsErrors(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	assert.NotPanics(t, func() { c.Logout(context.Background()) })

	srv := apitest.NewServer(t)
	srv.FailNext(1, http.StatusInternalServerError)
	assert.NotPanics(t, func() { newTestClient(t, srv.URL).Logout(context.Background()) })
}

func TestAuthFailureWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL)
	_, err := c.Signup(context.Background(), "a@b.io", "secret")
	assert.EqualError(t, err, "Signup failed")
	_, err = c.Login(context.Background(), "a@b.io", "secret")
	assert.EqualError(t, err, "Login failed")
}
