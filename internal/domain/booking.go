package domain

import "time"

// Participant is one seat-holder named in a booking: the booker or an
// invitee. It has no identity outside the owning booking.
type Participant struct {
	UserID    int64 `json:"user_id"`
	Confirmed bool  `json:"confirmed"`
}

type Booking struct {
	ID           int64         `json:"id"`
	RideID       int64         `json:"ride_id"`
	RiderID      int64         `json:"rider_id"`
	Seats        int           `json:"seats"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// HasConfirmed reports whether at least one participant confirmed, i.e.
// whether this booking's seats were actually deducted from the ride.
func (b *Booking) HasConfirmed() bool {
	for _, p := range b.Participants {
		if p.Confirmed {
			return true
		}
	}
	return false
}

// IsParticipant reports whether userID appears in the participant list.
func (b *Booking) IsParticipant(userID int64) bool {
	for _, p := range b.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
