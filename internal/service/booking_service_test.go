package service

import (
	"context"
	"testing"
	"time"

	"schedly/internal/api"
	"schedly/internal/domain"
	"schedly/internal/events"
	"schedly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingService(gw *mockGateway, bus domain.EventPublisher) *BookingService {
	s := NewBookingService(gw, bus, &testLogger)
	s.now = func() time.Time { return time.Date(2030, 6, 15, 12, 0, 0, 0, time.Local) }
	return s
}

func validRequest() BookingRequest {
	return BookingRequest{
		CustomerName:  " Ann ",
		CustomerPhone: "555-0100",
		CustomerEmail: "ann@example.com",
		Date:          "2030-06-15",
		Time:          "09:30",
	}
}

func TestBookCopiesServiceOwner(t *testing.T) {
	gw := new(mockGateway)
	bus := new(mockPublisher)
	s := newBookingService(gw, bus)
	ctx := context.Background()

	gw.On("GetService", ctx, "svc-1").Return(&models.Service{ID: "svc-1", UserID: "owner-7", Price: "75"}, nil).Once()
	gw.On("SaveAppointment", ctx, mock.MatchedBy(func(a *models.Appointment) bool {
		return a.ID == "" &&
			a.UserID == "owner-7" &&
			a.ServiceID == "svc-1" &&
			a.CustomerName == "Ann" &&
			a.Status == models.StatusScheduled &&
			a.PaymentStatus == models.PaymentPending &&
			a.CreatedAt == s.now().UTC().Format(time.RFC3339)
	})).Return(&models.Appointment{ID: "appt-1", UserID: "owner-7", ServiceID: "svc-1", Status: models.StatusScheduled}, nil).Once()
	bus.On("PublishJSON", events.EventAppointmentBooked, mock.MatchedBy(func(p events.AppointmentEventPayload) bool {
		return p.AppointmentID == "appt-1" && p.OwnerID == "owner-7"
	})).Return(nil).Once()

	appt, err := s.Book(ctx, "svc-1", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "appt-1", appt.ID)
	gw.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestBookValidation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*BookingRequest)
		field  string
	}{
		"missing name":  {func(r *BookingRequest) { r.CustomerName = "  " }, "customerName"},
		"missing phone": {func(r *BookingRequest) { r.CustomerPhone = "" }, "customerPhone"},
		"missing date":  {func(r *BookingRequest) { r.Date = "" }, "date"},
		"missing time":  {func(r *BookingRequest) { r.Time = "" }, "time"},
		"past date":     {func(r *BookingRequest) { r.Date = "2030-06-14" }, "date"},
		"bad date":      {func(r *BookingRequest) { r.Date = "15/06/2030" }, "date"},
		"bad time":      {func(r *BookingRequest) { r.Time = "9am" }, "time"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			gw := new(mockGateway)
			s := newBookingService(gw, nil)
			req := validRequest()
			tc.mutate(&req)

			_, err := s.Book(context.Background(), "svc-1", req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			gw.AssertNotCalled(t, "GetService", mock.Anything, mock.Anything)
		})
	}
}

func TestBookUnknownService(t *testing.T) {
	gw := new(mockGateway)
	s := newBookingService(gw, nil)
	ctx := context.Background()

	gw.On("GetService", ctx, "gone").Return(nil, nil).Once()
	_, err := s.Book(ctx, "gone", validRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)

	notFound := &api.Error{Kind: api.ErrNotFound, Message: "Service not found", StatusCode: 404}
	gw.On("GetService", ctx, "missing").Return(nil, notFound).Once()
	_, err = s.Book(ctx, "missing", validRequest())
	assert.ErrorIs(t, err, api.ErrNotFound)
	gw.AssertNotCalled(t, "SaveAppointment", mock.Anything, mock.Anything)
}

func TestSchedule(t *testing.T) {
	gw := new(mockGateway)
	s := newBookingService(gw, nil)
	ctx := context.Background()
	session := Session{User: &models.User{ID: "owner-1"}}

	_, err := s.Schedule(ctx, Session{}, &models.Appointment{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "session", verr.Field)

	_, err = s.Schedule(ctx, session, &models.Appointment{ServiceID: "svc-1", CustomerName: "Bo", Date: "2030-01-01", Time: "10:00", Status: "archived"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	gw.On("SaveAppointment", ctx, mock.MatchedBy(func(a *models.Appointment) bool {
		return a.UserID == "owner-1" && a.Status == models.StatusScheduled && a.PaymentStatus == models.PaymentPending && a.CreatedAt != ""
	})).Return(&models.Appointment{ID: "appt-2"}, nil).Once()

	saved, err := s.Schedule(ctx, session, &models.Appointment{ServiceID: "svc-1", CustomerName: "Bo", Date: "2030-01-01", Time: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, "appt-2", saved.ID)
	gw.AssertExpectations(t)
}

func TestSetStatus(t *testing.T) {
	gw := new(mockGateway)
	bus := new(mockPublisher)
	s := newBookingService(gw, bus)
	ctx := context.Background()

	_, err := s.SetStatus(ctx, "appt-1", "done")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	gw.On("GetAppointment", ctx, "appt-1").Return(&models.Appointment{ID: "appt-1", Status: models.StatusScheduled}, nil).Once()
	gw.On("SaveAppointment", ctx, mock.MatchedBy(func(a *models.Appointment) bool {
		return a.Status == models.StatusCompleted
	})).Return(&models.Appointment{ID: "appt-1", Status: models.StatusCompleted}, nil).Once()
	bus.On("PublishJSON", events.EventAppointmentStatusChanged, mock.Anything).Return(nil).Once()

	updated, err := s.SetStatus(ctx, "appt-1", models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	gw.On("GetAppointment", ctx, "missing").Return(nil, nil).Once()
	_, err = s.SetStatus(ctx, "missing", models.StatusCancelled)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	gw.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestCatalogSave(t *testing.T) {
	gw := new(mockGateway)
	s := NewCatalogService(gw)
	ctx := context.Background()
	session := Session{User: &models.User{ID: "owner-1"}}

	_, err := s.Save(ctx, session, &models.Service{Title: " ", Price: "10"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	gw.On("SaveService", ctx, mock.MatchedBy(func(svc *models.Service) bool {
		return svc.UserID == "owner-1" && svc.Title == "Cut" && svc.CreatedAt != ""
	})).Return(&models.Service{ID: "svc-1", Title: "Cut"}, nil).Once()

	saved, err := s.Save(ctx, session, &models.Service{Title: " Cut ", Price: "$20"})
	require.NoError(t, err)
	assert.Equal(t, "svc-1", saved.ID)
	gw.AssertExpectations(t)

	assert.Equal(t, "https://app.example.com/book/svc-1", BookingLink("https://app.example.com/", "svc-1"))
	assert.Equal(t, "https://app.example.com/pay/appt-1", PaymentLink("https://app.example.com", "appt-1"))
}
