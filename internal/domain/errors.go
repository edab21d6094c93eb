package domain

import "errors"

var (
	// Ride errors
	ErrRideNotFound     = errors.New("ride not found")
	ErrRideNotBookable  = errors.New("ride is not open for booking")
	ErrNotRideDriver    = errors.New("not the driver of this ride")
	ErrDriverSelfBook   = errors.New("drivers cannot book their own rides")
	ErrNotDriverAccount = errors.New("only drivers can create rides")

	// Booking errors
	ErrBookingNotFound      = errors.New("booking not found")
	ErrAlreadyBooked        = errors.New("ride already booked by this rider")
	ErrCapacityExceeded     = errors.New("not enough available seats")
	ErrNotBookingOwner      = errors.New("not the owner of this booking")
	ErrNotInvited           = errors.New("not invited to this ride")
	ErrDuplicateParticipant = errors.New("duplicate participant")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserSuspended      = errors.New("account is suspended")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrSelfReport   = errors.New("cannot report yourself")
)
