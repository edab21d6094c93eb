package rides

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lucavt/carpool/internal/domain"
	"github.com/lucavt/carpool/internal/kafka"
	"github.com/lucavt/carpool/internal/repository"
	"github.com/sirupsen/logrus"
)

type RideUseCase interface {
	Create(ctx context.Context, input CreateRideInput) (*domain.Ride, error)
	List(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error)
	GetByID(ctx context.Context, id int64) (*domain.Ride, error)
	Update(ctx context.Context, input UpdateRideInput) (*domain.Ride, error)
	Cancel(ctx context.Context, rideID, requesterID int64) error
	ActivateDueRides(ctx context.Context) ([]domain.Ride, error)
}

type Cache interface {
	GetRides(ctx context.Context) ([]domain.Ride, error)
	SetRides(ctx context.Context, rides []domain.Ride) error
	InvalidateRides(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RideService struct {
	rides              repository.RideRepository
	bookings           repository.BookingRepository
	users              repository.UserRepository
	cache              Cache
	producer           Producer
	notificationsTopic string
}

type CreateRideInput struct {
	DriverID      int64
	StartPoint    domain.GeoPoint
	EndPoint      domain.GeoPoint
	DepartureTime time.Time
	PriceCents    int64
	Seats         int
}

type UpdateRideInput struct {
	RideID        int64
	RequesterID   int64
	StartPoint    *domain.GeoPoint
	EndPoint      *domain.GeoPoint
	DepartureTime *time.Time
	PriceCents    *int64
	Seats         *int
	Status        *domain.RideStatus
}

func NewRideService(
	rides repository.RideRepository,
	bookings repository.BookingRepository,
	users repository.UserRepository,
	cache Cache,
	producer Producer,
	notificationsTopic string,
) *RideService {
	return &RideService{
		rides:              rides,
		bookings:           bookings,
		users:              users,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
	}
}

func (s *RideService) Create(ctx context.Context, input CreateRideInput) (*domain.Ride, error) {
	if input.Seats < 1 {
		return nil, fmt.Errorf("%w: seats must be at least 1", domain.ErrInvalidInput)
	}
	if input.DepartureTime.IsZero() {
		return nil, fmt.Errorf("%w: departure time is required", domain.ErrInvalidInput)
	}

	driver, err := s.users.GetByID(ctx, input.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsDriver {
		return nil, domain.ErrNotDriverAccount
	}

	ride := &domain.Ride{
		DriverID:       input.DriverID,
		StartPoint:     input.StartPoint,
		EndPoint:       input.EndPoint,
		DepartureTime:  input.DepartureTime,
		PriceCents:     input.PriceCents,
		AvailableSeats: input.Seats,
	}
	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateRides(ctx)
	}
	return ride, nil
}

// List serves the public listing of open rides. The unfiltered query is the
// hot one and goes through the cache; filtered queries always hit the db.
func (s *RideService) List(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error) {
	if s.cache != nil && filter.IsEmpty() {
		if cached, err := s.cache.GetRides(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rides, err := s.rides.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && filter.IsEmpty() {
		_ = s.cache.SetRides(ctx, rides)
	}
	return rides, nil
}

func (s *RideService) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	return s.rides.GetByID(ctx, id)
}

func (s *RideService) Update(ctx context.Context, input UpdateRideInput) (*domain.Ride, error) {
	ride, err := s.rides.GetByID(ctx, input.RideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != input.RequesterID {
		return nil, domain.ErrNotRideDriver
	}

	if input.StartPoint != nil {
		ride.StartPoint = *input.StartPoint
	}
	if input.EndPoint != nil {
		ride.EndPoint = *input.EndPoint
	}
	if input.DepartureTime != nil {
		ride.DepartureTime = *input.DepartureTime
	}
	if input.PriceCents != nil {
		ride.PriceCents = *input.PriceCents
	}
	if input.Seats != nil {
		if *input.Seats < 0 {
			return nil, fmt.Errorf("%w: seats cannot be negative", domain.ErrInvalidInput)
		}
		ride.AvailableSeats = *input.Seats
	}
	if input.Status != nil {
		ride.Status = *input.Status
	}

	if err := s.rides.Update(ctx, ride); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateRides(ctx)
	}
	return ride, nil
}

// Cancel deletes a ride and every booking on it, then notifies each booker.
func (s *RideService) Cancel(ctx context.Context, rideID, requesterID int64) error {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != requesterID {
		return domain.ErrNotRideDriver
	}

	bookings, err := s.bookings.ListByRide(ctx, rideID)
	if err != nil {
		return err
	}

	if err := s.rides.Delete(ctx, rideID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateRides(ctx)
	}

	for _, b := range bookings {
		s.notify(ctx, b.RiderID, "Ride cancelled",
			fmt.Sprintf("The ride from %s to %s was cancelled by the driver.", ride.StartPoint.Address, ride.EndPoint.Address),
			domain.NotificationRideCancelled, ride.ID, b.ID)
	}
	return nil
}

func (s *RideService) ActivateDueRides(ctx context.Context) ([]domain.Ride, error) {
	return s.rides.ActivateDue(ctx, time.Now())
}

func (s *RideService) notify(ctx context.Context, userID int64, title, message string, typ domain.NotificationType, rideID, bookingID int64) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.NotificationEvent{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    string(typ),
		Data: map[string]string{
			"ride_id":    fmt.Sprintf("%d", rideID),
			"booking_id": fmt.Sprintf("%d", bookingID),
		},
		CreatedAt: time.Now(),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, event.ID, event); err != nil {
		logrus.WithError(err).Warnf("failed to publish %s event", typ)
	}
}

var _ RideUseCase = (*RideService)(nil)
