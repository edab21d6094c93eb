package booking

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

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, input UpdateBookingInput) (*domain.Booking, error)
	ConfirmParticipation(ctx context.Context, rideID, userID int64) error
	CancelBooking(ctx context.Context, bookingID, requesterID int64) error
	GetBooking(ctx context.Context, bookingID, requesterID int64) (*domain.Booking, error)
	MyBookings(ctx context.Context, riderID int64) ([]domain.Booking, error)
	BookingsForRide(ctx context.Context, rideID, requesterID int64) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	rides              repository.RideRepository
	users              repository.UserRepository
	producer           Producer
	notificationsTopic string
}

type CreateBookingInput struct {
	RideID         int64   `json:"ride_id"`
	RiderID        int64   `json:"rider_id"`
	Seats          int     `json:"seats"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

type UpdateBookingInput struct {
	BookingID      int64
	RequesterID    int64
	Seats          *int
	ParticipantIDs []int64
}

func NewBookingService(
	bookings repository.BookingRepository,
	rides repository.RideRepository,
	users repository.UserRepository,
	producer Producer,
	notificationsTopic string,
) *BookingService {
	return &BookingService{
		bookings:           bookings,
		rides:              rides,
		users:              users,
		producer:           producer,
		notificationsTopic: notificationsTopic,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.Seats < 1 {
		return nil, fmt.Errorf("%w: seats must be at least 1", domain.ErrInvalidInput)
	}

	rider, err := s.users.GetByID(ctx, input.RiderID)
	if err != nil {
		return nil, err
	}
	if rider.Suspended {
		return nil, domain.ErrUserSuspended
	}

	// Прокачиваем список: сам райдер первым, приглашённые за ним
	participants := []domain.Participant{{UserID: input.RiderID, Confirmed: false}}
	seen := map[int64]bool{input.RiderID: true}
	for _, id := range input.ParticipantIDs {
		if seen[id] {
			return nil, domain.ErrDuplicateParticipant
		}
		seen[id] = true
		participants = append(participants, domain.Participant{UserID: id, Confirmed: false})
	}

	booking := &domain.Booking{
		RideID:       input.RideID,
		RiderID:      input.RiderID,
		Seats:        input.Seats,
		Participants: participants,
	}

	// Seat checks happen under the ride row lock inside the repository.
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	if ride, err := s.rides.GetByID(ctx, booking.RideID); err == nil {
		s.notify(ctx, ride.DriverID, "New booking",
			fmt.Sprintf("A rider requested %d seat(s) on your ride from %s to %s.", booking.Seats, ride.StartPoint.Address, ride.EndPoint.Address),
			domain.NotificationBookingCreated, ride.ID, booking.ID)
	}

	return booking, nil
}

func (s *BookingService) UpdateBooking(ctx context.Context, input UpdateBookingInput) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.RiderID != input.RequesterID {
		return nil, domain.ErrNotBookingOwner
	}

	seats := booking.Seats
	if input.Seats != nil {
		if *input.Seats < 1 {
			return nil, fmt.Errorf("%w: seats must be at least 1", domain.ErrInvalidInput)
		}
		seats = *input.Seats
	}

	var participants []domain.Participant
	if input.ParticipantIDs != nil {
		// Owner stays first and keeps their confirmation state; invitee
		// state is kept for users that remain on the list.
		confirmed := make(map[int64]bool, len(booking.Participants))
		for _, p := range booking.Participants {
			confirmed[p.UserID] = p.Confirmed
		}
		participants = []domain.Participant{{UserID: booking.RiderID, Confirmed: confirmed[booking.RiderID]}}
		seen := map[int64]bool{booking.RiderID: true}
		for _, id := range input.ParticipantIDs {
			if seen[id] {
				return nil, domain.ErrDuplicateParticipant
			}
			seen[id] = true
			participants = append(participants, domain.Participant{UserID: id, Confirmed: confirmed[id]})
		}
	}

	updated, err := s.bookings.Update(ctx, input.BookingID, seats, participants)
	if err != nil {
		return nil, err
	}

	if ride, err := s.rides.GetByID(ctx, booking.RideID); err == nil {
		s.notify(ctx, ride.DriverID, "Booking modified",
			fmt.Sprintf("A booking for the ride from %s to %s was modified.", ride.StartPoint.Address, ride.EndPoint.Address),
			domain.NotificationBookingModified, ride.ID, updated.ID)
	}

	return updated, nil
}

func (s *BookingService) ConfirmParticipation(ctx context.Context, rideID, userID int64) error {
	booking, err := s.bookings.ConfirmParticipant(ctx, rideID, userID)
	if err != nil {
		return err
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil
	}
	var bookingID int64
	if booking != nil {
		bookingID = booking.ID
	}
	s.notify(ctx, ride.DriverID, "Participation confirmed",
		fmt.Sprintf("A participant confirmed their presence on the ride from %s to %s.", ride.StartPoint.Address, ride.EndPoint.Address),
		domain.NotificationBookingConfirmed, ride.ID, bookingID)
	return nil
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID int64) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	ride, err := s.rides.GetByID(ctx, booking.RideID)
	if err != nil {
		return err
	}

	// Только владелец или водитель могут отменить
	if booking.RiderID != requesterID && ride.DriverID != requesterID {
		return domain.ErrNotBookingOwner
	}

	if _, err := s.bookings.Delete(ctx, bookingID); err != nil {
		return err
	}

	s.notify(ctx, booking.RiderID, "Booking cancelled",
		fmt.Sprintf("Your booking for the ride from %s to %s was rejected by the driver or cancelled.", ride.StartPoint.Address, ride.EndPoint.Address),
		domain.NotificationBookingRejected, ride.ID, booking.ID)
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RiderID != requesterID {
		return nil, domain.ErrNotBookingOwner
	}
	return booking, nil
}

func (s *BookingService) MyBookings(ctx context.Context, riderID int64) ([]domain.Booking, error) {
	return s.bookings.ListByRider(ctx, riderID)
}

func (s *BookingService) BookingsForRide(ctx context.Context, rideID, requesterID int64) ([]domain.Booking, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != requesterID {
		return nil, domain.ErrNotRideDriver
	}
	return s.bookings.ListByRide(ctx, rideID)
}

// notify publishes a fire-and-forget notification event. A publish failure is
// logged and swallowed: the primary mutation already committed and must not
// be rolled back for a side channel.
func (s *BookingService) notify(ctx context.Context, userID int64, title, message string, typ domain.NotificationType, rideID, bookingID int64) {
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

var _ BookingUseCase = (*BookingService)(nil)
