package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucavt/carpool/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	AverageForUser(ctx context.Context, userID int64) (float64, error)
	CreateReport(ctx context.Context, report *domain.Report) error
}

type PGReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) ReviewRepository {
	return &PGReviewRepository{db: db}
}

func (r *PGReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.db.QueryRow(ctx, `INSERT INTO reviews (origin_user_id, target_user_id, description, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, review.OriginUserID, review.TargetUserID, review.Description, review.Rating).
		Scan(&review.ID, &review.CreatedAt)
}

// AverageForUser returns the arithmetic mean of all review ratings targeting
// the user, or the default rating when there are none.
func (r *PGReviewRepository) AverageForUser(ctx context.Context, userID int64) (float64, error) {
	var avg float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(AVG(rating), 5) FROM reviews WHERE target_user_id=$1`, userID).Scan(&avg)
	return avg, err
}

func (r *PGReviewRepository) CreateReport(ctx context.Context, report *domain.Report) error {
	return r.db.QueryRow(ctx, `INSERT INTO reports (reporter_id, reported_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, report.ReporterID, report.ReportedID, report.Reason).
		Scan(&report.ID, &report.CreatedAt)
}

var _ ReviewRepository = (*PGReviewRepository)(nil)
