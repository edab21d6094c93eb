package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucavt/carpool/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type PGNotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &PGNotificationRepository{db: db}
}

const notificationColumns = `id, user_id, title, message, type, data, read, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var data []byte
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &data, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (r *PGNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.Type == "" {
		n.Type = domain.NotificationGeneric
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `INSERT INTO notifications (user_id, title, message, type, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, read, created_at`, n.UserID, n.Title, n.Message, n.Type, data).
		Scan(&n.ID, &n.Read, &n.CreatedAt)
}

func (r *PGNotificationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *PGNotificationRepository) MarkRead(ctx context.Context, id, userID int64) (*domain.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, `UPDATE notifications SET read=true WHERE id=$1 AND user_id=$2 RETURNING `+notificationColumns, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotificationNotFound
	}
	return n, err
}

func (r *PGNotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read=true WHERE user_id=$1 AND read=false`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var _ NotificationRepository = (*PGNotificationRepository)(nil)
