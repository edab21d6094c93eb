package domain

import "time"

type NotificationType string

const (
	NotificationGeneric          NotificationType = "generic"
	NotificationBookingCreated   NotificationType = "booking_created"
	NotificationBookingModified  NotificationType = "booking_modified"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingRejected  NotificationType = "booking_rejected"
	NotificationRideCancelled    NotificationType = "ride_cancelled"
)

type Notification struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      NotificationType  `json:"type"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
