package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lucavt/carpool/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	Seats          int     `json:"seats"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

type updateBookingRequest struct {
	Seats          *int    `json:"seats"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the booking routes. In /:id/book and /:id/confirm the id
// is the ride id; everywhere else it is the booking id.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/:id/book", h.create)
	router.POST("/:id/confirm", h.confirm)
	router.PUT("/:id", h.update)
	router.GET("/my-bookings", h.myBookings)
	router.GET("/by-ride/:id", h.byRide)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *BookingHandler) create(c *gin.Context) {
	rideID, ok := pathID(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := currentClaims(c)
	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		RideID:         rideID,
		RiderID:        claims.UserID,
		Seats:          req.Seats,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking successful. Waiting for participants to confirm.",
		"booking": created,
	})
}

func (h *BookingHandler) update(c *gin.Context) {
	bookingID, ok := pathID(c)
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := currentClaims(c)
	updated, err := h.service.UpdateBooking(c.Request.Context(), booking.UpdateBookingInput{
		BookingID:      bookingID,
		RequesterID:    claims.UserID,
		Seats:          req.Seats,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	claims := currentClaims(c)
	if err := h.service.ConfirmParticipation(c.Request.Context(), rideID, claims.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Participation confirmed"})
}

func (h *BookingHandler) get(c *gin.Context) {
	bookingID, ok := pathID(c)
	if !ok {
		return
	}

	claims := currentClaims(c)
	found, err := h.service.GetBooking(c.Request.Context(), bookingID, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *BookingHandler) myBookings(c *gin.Context) {
	claims := currentClaims(c)
	bookings, err := h.service.MyBookings(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	bookingID, ok := pathID(c)
	if !ok {
		return
	}

	claims := currentClaims(c)
	if err := h.service.CancelBooking(c.Request.Context(), bookingID, claims.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

func (h *BookingHandler) byRide(c *gin.Context) {
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	claims := currentClaims(c)
	bookings, err := h.service.BookingsForRide(c.Request.Context(), rideID, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}
