package notify

import (
	"context"

	"github.com/lucavt/carpool/internal/domain"
	"github.com/lucavt/carpool/internal/kafka"
	"github.com/lucavt/carpool/internal/repository"
	"github.com/sirupsen/logrus"
)

// Notifier turns consumed notification events into persisted notifications
// that the API serves back to users. Delivery is at-least-once: a redelivered
// event produces a duplicate row, which is accepted.
type Notifier struct {
	notifications repository.NotificationRepository
}

func NewNotifier(notifications repository.NotificationRepository) *Notifier {
	return &Notifier{notifications: notifications}
}

func (n *Notifier) Deliver(ctx context.Context, event kafka.NotificationEvent) error {
	notification := &domain.Notification{
		UserID:  event.UserID,
		Title:   event.Title,
		Message: event.Message,
		Type:    domain.NotificationType(event.Type),
		Data:    event.Data,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": event.UserID,
		"type":    event.Type,
	}).Info("notification delivered")
	return nil
}
