package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucavt/carpool/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByRide(ctx context.Context, rideID int64) ([]domain.Booking, error)
	ListByRider(ctx context.Context, riderID int64) ([]domain.Booking, error)
	Update(ctx context.Context, id int64, seats int, participants []domain.Participant) (*domain.Booking, error)
	ConfirmParticipant(ctx context.Context, rideID, userID int64) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, ride_id, rider_id, seats, participants, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var participants []byte
	if err := row.Scan(&b.ID, &b.RideID, &b.RiderID, &b.Seats, &participants, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participants, &b.Participants); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking after re-checking every seat invariant under a
// row lock on the ride, so two concurrent requests against the same ride
// serialize here and cannot both pass the capacity check on a stale read.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var driverID int64
	var available int
	var status domain.RideStatus
	err = tx.QueryRow(ctx, `SELECT driver_id, available_seats, status FROM rides WHERE id=$1 FOR UPDATE`, booking.RideID).
		Scan(&driverID, &available, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrRideNotFound
	}
	if err != nil {
		return err
	}

	if driverID == booking.RiderID {
		return domain.ErrDriverSelfBook
	}
	if status != domain.RideStatusPending && status != domain.RideStatusActive {
		return domain.ErrRideNotBookable
	}

	var alreadyBooked bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE ride_id=$1 AND rider_id=$2)`, booking.RideID, booking.RiderID).Scan(&alreadyBooked); err != nil {
		return err
	}
	if alreadyBooked {
		return domain.ErrAlreadyBooked
	}

	// Capacity is checked against requested seats. A booking is counted here
	// only while unconfirmed: once a participant confirms, its seats are
	// already deducted from available_seats and counting it twice would
	// reject riders that still fit.
	var requested int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(seats), 0) FROM bookings
		WHERE ride_id=$1
		AND NOT EXISTS (SELECT 1 FROM jsonb_array_elements(participants) p WHERE (p->>'confirmed')::bool)`, booking.RideID).Scan(&requested); err != nil {
		return err
	}
	if requested+booking.Seats > available {
		return domain.ErrCapacityExceeded
	}

	payload, err := json.Marshal(booking.Participants)
	if err != nil {
		return err
	}
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (ride_id, rider_id, seats, participants)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`, booking.RideID, booking.RiderID, booking.Seats, payload).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) ListByRide(ctx context.Context, rideID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE ride_id=$1 ORDER BY created_at`, rideID)
}

func (r *PGBookingRepository) ListByRider(ctx context.Context, riderID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE rider_id=$1 ORDER BY created_at`, riderID)
}

func (r *PGBookingRepository) list(ctx context.Context, query string, arg interface{}) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// lockRideThenBooking loads the booking with both row locks held, ride row
// first. Every seat-mutating transaction acquires the two locks in this
// order; taking them the other way around deadlocks against a concurrent
// confirmation on the same ride. The booking is peeked without a lock to
// learn its ride, then re-read FOR UPDATE once the ride row is held.
func lockRideThenBooking(ctx context.Context, tx pgx.Tx, bookingID int64) (*domain.Booking, int, error) {
	var rideID int64
	err := tx.QueryRow(ctx, `SELECT ride_id FROM bookings WHERE id=$1`, bookingID).Scan(&rideID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	var available int
	err = tx.QueryRow(ctx, `SELECT available_seats FROM rides WHERE id=$1 FOR UPDATE`, rideID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, domain.ErrRideNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	booking, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		// deleted while we waited on the ride lock
		return nil, 0, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return booking, available, nil
}

// Update changes seats and/or participants. The seat diff is applied to the
// ride's available_seats immediately: a positive diff claims seats right away
// and is bounded by the remaining availability, a negative diff hands them
// back. Both writes commit in one transaction.
func (r *PGBookingRepository) Update(ctx context.Context, id int64, seats int, participants []domain.Participant) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, available, err := lockRideThenBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	seatDiff := seats - booking.Seats
	if seatDiff > 0 && seatDiff > available {
		return nil, domain.ErrCapacityExceeded
	}

	if seatDiff != 0 {
		if _, err := tx.Exec(ctx, `UPDATE rides SET available_seats = available_seats - $1, updated_at=now() WHERE id=$2`, seatDiff, booking.RideID); err != nil {
			return nil, err
		}
	}

	booking.Seats = seats
	if participants != nil {
		booking.Participants = participants
	}
	payload, err := json.Marshal(booking.Participants)
	if err != nil {
		return nil, err
	}
	if err := tx.QueryRow(ctx, `UPDATE bookings SET seats=$1, participants=$2, updated_at=now() WHERE id=$3 RETURNING updated_at`, booking.Seats, payload, id).Scan(&booking.UpdatedAt); err != nil {
		return nil, err
	}

	return booking, tx.Commit(ctx)
}

// ConfirmParticipant marks every participant entry for userID on the ride's
// bookings as confirmed. Seats are deducted once per call, for the booking
// whose entry actually flipped; re-confirming is a no-op, never a second
// deduction.
func (r *PGBookingRepository) ConfirmParticipant(ctx context.Context, rideID, userID int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var available int
	err = tx.QueryRow(ctx, `SELECT available_seats FROM rides WHERE id=$1 FOR UPDATE`, rideID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE ride_id=$1 ORDER BY created_at FOR UPDATE`, rideID)
	if err != nil {
		return nil, err
	}
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		bookings = append(bookings, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	invited := false
	var userBooking *domain.Booking
	for _, b := range bookings {
		changed := false
		for i := range b.Participants {
			if b.Participants[i].UserID != userID {
				continue
			}
			invited = true
			if !b.Participants[i].Confirmed {
				b.Participants[i].Confirmed = true
				changed = true
			}
		}
		if changed {
			userBooking = b
			payload, err := json.Marshal(b.Participants)
			if err != nil {
				return nil, err
			}
			if _, err := tx.Exec(ctx, `UPDATE bookings SET participants=$1, updated_at=now() WHERE id=$2`, payload, b.ID); err != nil {
				return nil, err
			}
		}
	}

	if !invited {
		return nil, domain.ErrNotInvited
	}
	if userBooking == nil {
		// already confirmed everywhere, nothing to deduct
		return nil, tx.Commit(ctx)
	}

	if userBooking.Seats > available {
		return nil, domain.ErrCapacityExceeded
	}
	if _, err := tx.Exec(ctx, `UPDATE rides SET available_seats = available_seats - $1, updated_at=now() WHERE id=$2`, userBooking.Seats, rideID); err != nil {
		return nil, err
	}

	return userBooking, tx.Commit(ctx)
}

// Delete removes the booking and reclaims its seats into the ride, but only
// if at least one participant had confirmed: unconfirmed bookings never
// consumed capacity, so there is nothing to give back.
func (r *PGBookingRepository) Delete(ctx context.Context, id int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, _, err := lockRideThenBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if booking.HasConfirmed() {
		if _, err := tx.Exec(ctx, `UPDATE rides SET available_seats = available_seats + $1, updated_at=now() WHERE id=$2`, booking.Seats, booking.RideID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id); err != nil {
		return nil, err
	}

	return booking, tx.Commit(ctx)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
