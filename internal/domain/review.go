package domain

import "time"

// Review is a one-shot rating from one user to another. The target's
// aggregate rating is recomputed as the mean of all reviews it received.
type Review struct {
	ID           int64     `json:"id"`
	OriginUserID int64     `json:"origin_user_id"`
	TargetUserID int64     `json:"target_user_id"`
	Description  string    `json:"description,omitempty"`
	Rating       float64   `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
}

type Report struct {
	ID         int64     `json:"id"`
	ReporterID int64     `json:"reporter_id"`
	ReportedID int64     `json:"reported_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
