package service

import (
	"context"
	"io"

	"schedly/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

var testLogger = zerolog.New(io.Discard)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ListServices(ctx context.Context) ([]*models.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}

func (m *mockGateway) GetService(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *mockGateway) SaveService(ctx context.Context, s *models.Service) (*models.Service, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *mockGateway) DeleteService(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGateway) ListAppointments(ctx context.Context) ([]*models.Appointment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

func (m *mockGateway) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *mockGateway) SaveAppointment(ctx context.Context, a *models.Appointment) (*models.Appointment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *mockGateway) DeleteAppointment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Signup(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuth) CurrentUser(ctx context.Context) *models.User {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.User)
}

func (m *mockAuth) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context) {
	m.Called(ctx)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
