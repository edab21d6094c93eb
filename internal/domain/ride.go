package domain

import "time"

type RideStatus string

const (
	RideStatusPending   RideStatus = "PENDING"
	RideStatusActive    RideStatus = "ACTIVE"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

type GeoPoint struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type Ride struct {
	ID             int64      `json:"id"`
	DriverID       int64      `json:"driver_id"`
	StartPoint     GeoPoint   `json:"start_point"`
	EndPoint       GeoPoint   `json:"end_point"`
	DepartureTime  time.Time  `json:"departure_time"`
	PriceCents     int64      `json:"price_cents"`
	AvailableSeats int        `json:"available_seats"`
	Status         RideStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RideFilter narrows the public ride listing. Zero values mean "no filter".
type RideFilter struct {
	From     string
	To       string
	Date     time.Time
	MinSeats int
}

func (f RideFilter) IsEmpty() bool {
	return f.From == "" && f.To == "" && f.Date.IsZero() && f.MinSeats == 0
}
