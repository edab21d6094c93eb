package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lucavt/carpool/internal/auth"
	"github.com/lucavt/carpool/internal/domain"
	"github.com/lucavt/carpool/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) UpdateBooking(ctx context.Context, input booking.UpdateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmParticipation(ctx context.Context, rideID, userID int64) error {
	args := m.Called(ctx, rideID, userID)
	return args.Error(0)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID, requesterID int64) error {
	args := m.Called(ctx, bookingID, requesterID)
	return args.Error(0)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, bookingID, requesterID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) MyBookings(ctx context.Context, riderID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, riderID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) BookingsForRide(ctx context.Context, rideID, requesterID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, rideID, requesterID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func authedTestContext(t *testing.T, userID int64) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(claimsKey, &auth.Claims{UserID: userID})
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 42)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	body, _ := json.Marshal(createBookingRequest{Seats: 2, ParticipantIDs: []int64{43}})
	c.Request = httptest.NewRequest("POST", "/api/bookings/7/book", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Booking{
		ID:      10,
		RideID:  7,
		RiderID: 42,
		Seats:   2,
		Participants: []domain.Participant{
			{UserID: 42},
			{UserID: 43},
		},
	}

	mockService.On("CreateBooking", c.Request.Context(), booking.CreateBookingInput{
		RideID:         7,
		RiderID:        42,
		Seats:          2,
		ParticipantIDs: []int64{43},
	}).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Message string         `json:"message"`
		Booking domain.Booking `json:"booking"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Booking successful. Waiting for participants to confirm.", response.Message)
	assert.Equal(t, int64(10), response.Booking.ID)
	assert.Len(t, response.Booking.Participants, 2)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_CapacityExceeded(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 42)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	body, _ := json.Marshal(createBookingRequest{Seats: 5})
	c.Request = httptest.NewRequest("POST", "/api/bookings/7/book", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), mock.Anything).Return(nil, domain.ErrCapacityExceeded)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_InvalidID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 42)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	c.Request = httptest.NewRequest("POST", "/api/bookings/abc/book", nil)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking")
}

func TestBookingHandler_confirm(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 43)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("POST", "/api/bookings/7/confirm", nil)

	mockService.On("ConfirmParticipation", c.Request.Context(), int64(7), int64(43)).Return(nil)

	handler.confirm(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_confirm_NotInvited(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 99)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("POST", "/api/bookings/7/confirm", nil)

	mockService.On("ConfirmParticipation", c.Request.Context(), int64(7), int64(99)).Return(domain.ErrNotInvited)

	handler.confirm(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_update(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 42)
	c.Params = gin.Params{{Key: "id", Value: "10"}}

	seats := 3
	body, _ := json.Marshal(updateBookingRequest{Seats: &seats, ParticipantIDs: []int64{44}})
	c.Request = httptest.NewRequest("PUT", "/api/bookings/10", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	updated := &domain.Booking{ID: 10, RideID: 7, RiderID: 42, Seats: 3}
	mockService.On("UpdateBooking", c.Request.Context(), mock.MatchedBy(func(input booking.UpdateBookingInput) bool {
		return input.BookingID == 10 && input.RequesterID == 42 && *input.Seats == 3
	})).Return(updated, nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response domain.Booking
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 3, response.Seats)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_NotOwner(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 99)
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	c.Request = httptest.NewRequest("GET", "/api/bookings/10", nil)

	mockService.On("GetBooking", c.Request.Context(), int64(10), int64(99)).Return(nil, domain.ErrNotBookingOwner)

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_myBookings(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 42)
	c.Request = httptest.NewRequest("GET", "/api/bookings/my-bookings", nil)

	list := []domain.Booking{{ID: 10, RideID: 7, RiderID: 42}}
	mockService.On("MyBookings", c.Request.Context(), int64(42)).Return(list, nil)

	handler.myBookings(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []domain.Booking
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_byRide_NotDriver(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 42)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("GET", "/api/bookings/by-ride/7", nil)

	mockService.On("BookingsForRide", c.Request.Context(), int64(7), int64(42)).Return([]domain.Booking(nil), domain.ErrNotRideDriver)

	handler.byRide(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 42)
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	c.Request = httptest.NewRequest("DELETE", "/api/bookings/10", nil)

	mockService.On("CancelBooking", c.Request.Context(), int64(10), int64(42)).Return(nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_BookingNotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := authedTestContext(t, 42)
	c.Params = gin.Params{{Key: "id", Value: "999"}}
	c.Request = httptest.NewRequest("DELETE", "/api/bookings/999", nil)

	mockService.On("CancelBooking", c.Request.Context(), int64(999), int64(42)).Return(domain.ErrBookingNotFound)

	handler.cancel(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
