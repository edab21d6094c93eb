package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucavt/carpool/internal/domain"
)

type RideRepository interface {
	Create(ctx context.Context, ride *domain.Ride) error
	GetByID(ctx context.Context, id int64) (*domain.Ride, error)
	List(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error)
	Update(ctx context.Context, ride *domain.Ride) error
	Delete(ctx context.Context, id int64) error
	ActivateDue(ctx context.Context, deadline time.Time) ([]domain.Ride, error)
}

type PGRideRepository struct {
	db *pgxpool.Pool
}

func NewRideRepository(db *pgxpool.Pool) RideRepository {
	return &PGRideRepository{db: db}
}

const rideColumns = `id, driver_id, start_address, start_lat, start_lng, end_address, end_lat, end_lng, departure_time, price_cents, available_seats, status, created_at, updated_at`

func scanRide(row pgx.Row) (*domain.Ride, error) {
	var r domain.Ride
	if err := row.Scan(&r.ID, &r.DriverID, &r.StartPoint.Address, &r.StartPoint.Lat, &r.StartPoint.Lng, &r.EndPoint.Address, &r.EndPoint.Lat, &r.EndPoint.Lng, &r.DepartureTime, &r.PriceCents, &r.AvailableSeats, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *PGRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	ride.Status = domain.RideStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO rides (driver_id, start_address, start_lat, start_lng, end_address, end_lat, end_lng, departure_time, price_cents, available_seats, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		ride.DriverID, ride.StartPoint.Address, ride.StartPoint.Lat, ride.StartPoint.Lng, ride.EndPoint.Address, ride.EndPoint.Lat, ride.EndPoint.Lng, ride.DepartureTime, ride.PriceCents, ride.AvailableSeats, ride.Status).
		Scan(&ride.ID, &ride.CreatedAt, &ride.UpdatedAt)
}

func (r *PGRideRepository) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	ride, err := scanRide(r.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRideNotFound
	}
	return ride, err
}

func (r *PGRideRepository) List(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status=$1`
	args := []interface{}{domain.RideStatusPending}

	if filter.From != "" {
		args = append(args, "%"+filter.From+"%")
		query += fmt.Sprintf(` AND start_address ILIKE $%d`, len(args))
	}
	if filter.To != "" {
		args = append(args, "%"+filter.To+"%")
		query += fmt.Sprintf(` AND end_address ILIKE $%d`, len(args))
	}
	if !filter.Date.IsZero() {
		day := filter.Date.Truncate(24 * time.Hour)
		args = append(args, day)
		query += fmt.Sprintf(` AND departure_time >= $%d`, len(args))
		args = append(args, day.Add(24*time.Hour))
		query += fmt.Sprintf(` AND departure_time < $%d`, len(args))
	}
	if filter.MinSeats > 0 {
		args = append(args, filter.MinSeats)
		query += fmt.Sprintf(` AND available_seats >= $%d`, len(args))
	}
	query += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rides := make([]domain.Ride, 0)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, *ride)
	}
	return rides, rows.Err()
}

func (r *PGRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	cmd, err := r.db.Exec(ctx, `UPDATE rides SET start_address=$1, start_lat=$2, start_lng=$3, end_address=$4, end_lat=$5, end_lng=$6, departure_time=$7, price_cents=$8, available_seats=$9, status=$10, updated_at=now() WHERE id=$11`,
		ride.StartPoint.Address, ride.StartPoint.Lat, ride.StartPoint.Lng, ride.EndPoint.Address, ride.EndPoint.Lat, ride.EndPoint.Lng, ride.DepartureTime, ride.PriceCents, ride.AvailableSeats, ride.Status, ride.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRideNotFound
	}
	return nil
}

// Delete removes a ride together with its bookings. Callers are expected to
// have loaded the booking list first if they need to notify the bookers.
func (r *PGRideRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE ride_id=$1`, id); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM rides WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRideNotFound
	}
	return tx.Commit(ctx)
}

func (r *PGRideRepository) ActivateDue(ctx context.Context, deadline time.Time) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `UPDATE rides SET status=$1, updated_at=now() WHERE status=$2 AND departure_time <= $3 RETURNING `+rideColumns, domain.RideStatusActive, domain.RideStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activated []domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		activated = append(activated, *ride)
	}
	return activated, rows.Err()
}

var _ RideRepository = (*PGRideRepository)(nil)
