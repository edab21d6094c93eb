package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucavt/carpool/internal/domain"
	"github.com/sirupsen/logrus"
)

// respondError maps domain errors onto conventional HTTP statuses:
// 400 validation/capacity, 401 credentials, 403 business-rule and
// authorization violations, 404 missing entities, 500 everything else.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRideNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrDuplicateParticipant),
		errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrSelfReport):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotBookingOwner),
		errors.Is(err, domain.ErrNotRideDriver),
		errors.Is(err, domain.ErrDriverSelfBook),
		errors.Is(err, domain.ErrAlreadyBooked),
		errors.Is(err, domain.ErrNotInvited),
		errors.Is(err, domain.ErrUserSuspended),
		errors.Is(err, domain.ErrNotDriverAccount),
		errors.Is(err, domain.ErrRideNotBookable):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).Error("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
