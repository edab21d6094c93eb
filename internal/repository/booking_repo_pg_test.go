package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucavt/carpool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewNotificationRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewNotificationRepository(pool)
	assert.NotNil(t, repo)
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

// queryLog covers pgx.Tx for code that only issues QueryRow, recording each
// statement in order. Any other call panics through the nil embedded Tx.
type queryLog struct {
	pgx.Tx
	sql  []string
	rows []stubRow
}

func (q *queryLog) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.sql = append(q.sql, sql)
	row := q.rows[0]
	q.rows = q.rows[1:]
	return row
}

// Блокировки берутся в одном порядке во всех транзакциях: сначала рейс,
// потом бронь. Обратный порядок приводил к deadlock с ConfirmParticipant.
func TestLockRideThenBooking_RideLockedFirst(t *testing.T) {
	now := time.Now()
	tx := &queryLog{rows: []stubRow{
		{scan: func(dest ...any) error {
			*(dest[0].(*int64)) = 7
			return nil
		}},
		{scan: func(dest ...any) error {
			*(dest[0].(*int)) = 3
			return nil
		}},
		{scan: func(dest ...any) error {
			*(dest[0].(*int64)) = 10
			*(dest[1].(*int64)) = 7
			*(dest[2].(*int64)) = 42
			*(dest[3].(*int)) = 2
			*(dest[4].(*[]byte)) = []byte(`[{"user_id":42,"confirmed":false}]`)
			*(dest[5].(*time.Time)) = now
			*(dest[6].(*time.Time)) = now
			return nil
		}},
	}}

	booking, available, err := lockRideThenBooking(context.Background(), tx, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(10), booking.ID)
	assert.Equal(t, int64(7), booking.RideID)
	assert.Equal(t, 3, available)

	require.Len(t, tx.sql, 3)
	// чтение брони для ride_id не берёт блокировку
	assert.Contains(t, tx.sql[0], "FROM bookings")
	assert.NotContains(t, tx.sql[0], "FOR UPDATE")
	// рейс блокируется раньше брони
	assert.Contains(t, tx.sql[1], "FROM rides")
	assert.Contains(t, tx.sql[1], "FOR UPDATE")
	assert.Contains(t, tx.sql[2], "FROM bookings")
	assert.Contains(t, tx.sql[2], "FOR UPDATE")
}

func TestLockRideThenBooking_BookingGone(t *testing.T) {
	tx := &queryLog{rows: []stubRow{
		{scan: func(dest ...any) error { return pgx.ErrNoRows }},
	}}

	_, _, err := lockRideThenBooking(context.Background(), tx, 10)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	assert.Len(t, tx.sql, 1)
}

// Бронь могут удалить, пока транзакция ждёт блокировку рейса
func TestLockRideThenBooking_DeletedWhileWaiting(t *testing.T) {
	tx := &queryLog{rows: []stubRow{
		{scan: func(dest ...any) error {
			*(dest[0].(*int64)) = 7
			return nil
		}},
		{scan: func(dest ...any) error {
			*(dest[0].(*int)) = 3
			return nil
		}},
		{scan: func(dest ...any) error { return pgx.ErrNoRows }},
	}}

	_, _, err := lockRideThenBooking(context.Background(), tx, 10)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	assert.Len(t, tx.sql, 3)
}
