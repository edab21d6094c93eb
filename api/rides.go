package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucavt/carpool/internal/domain"
	"github.com/lucavt/carpool/internal/service/rides"
)

type RideHandler struct {
	service rides.RideUseCase
}

type createRideRequest struct {
	StartAddress   string    `json:"start_address" binding:"required"`
	StartLat       float64   `json:"start_lat"`
	StartLng       float64   `json:"start_lng"`
	EndAddress     string    `json:"end_address" binding:"required"`
	EndLat         float64   `json:"end_lat"`
	EndLng         float64   `json:"end_lng"`
	DepartureTime  time.Time `json:"departure_time" binding:"required"`
	PriceCents     int64     `json:"price_cents"`
	AvailableSeats int       `json:"available_seats" binding:"required"`
}

type updateRideRequest struct {
	StartAddress   *string            `json:"start_address"`
	StartLat       *float64           `json:"start_lat"`
	StartLng       *float64           `json:"start_lng"`
	EndAddress     *string            `json:"end_address"`
	EndLat         *float64           `json:"end_lat"`
	EndLng         *float64           `json:"end_lng"`
	DepartureTime  *time.Time         `json:"departure_time"`
	PriceCents     *int64             `json:"price_cents"`
	AvailableSeats *int               `json:"available_seats"`
	Status         *domain.RideStatus `json:"status"`
}

func NewRideHandler(service rides.RideUseCase) *RideHandler {
	return &RideHandler{service: service}
}

// Register mounts the public read routes and, behind authMW, the
// driver-side mutations.
func (h *RideHandler) Register(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/", authMW, h.create)
	router.PUT("/:id", authMW, h.update)
	router.DELETE("/:id", authMW, h.cancel)
}

func (h *RideHandler) list(c *gin.Context) {
	filter := domain.RideFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		filter.Date = parsed
	}
	if seats := c.Query("seats"); seats != "" {
		n, err := strconv.Atoi(seats)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seats"})
			return
		}
		filter.MinSeats = n
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RideHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ride, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

func (h *RideHandler) create(c *gin.Context) {
	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := currentClaims(c)
	ride, err := h.service.Create(c.Request.Context(), rides.CreateRideInput{
		DriverID:      claims.UserID,
		StartPoint:    domain.GeoPoint{Address: req.StartAddress, Lat: req.StartLat, Lng: req.StartLng},
		EndPoint:      domain.GeoPoint{Address: req.EndAddress, Lat: req.EndLat, Lng: req.EndLng},
		DepartureTime: req.DepartureTime,
		PriceCents:    req.PriceCents,
		Seats:         req.AvailableSeats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ride)
}

func (h *RideHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := currentClaims(c)
	input := rides.UpdateRideInput{
		RideID:        id,
		RequesterID:   claims.UserID,
		DepartureTime: req.DepartureTime,
		PriceCents:    req.PriceCents,
		Seats:         req.AvailableSeats,
		Status:        req.Status,
	}
	if req.StartAddress != nil || req.StartLat != nil || req.StartLng != nil {
		var point domain.GeoPoint
		if req.StartAddress != nil {
			point.Address = *req.StartAddress
		}
		if req.StartLat != nil {
			point.Lat = *req.StartLat
		}
		if req.StartLng != nil {
			point.Lng = *req.StartLng
		}
		input.StartPoint = &point
	}
	if req.EndAddress != nil || req.EndLat != nil || req.EndLng != nil {
		var point domain.GeoPoint
		if req.EndAddress != nil {
			point.Address = *req.EndAddress
		}
		if req.EndLat != nil {
			point.Lat = *req.EndLat
		}
		if req.EndLng != nil {
			point.Lng = *req.EndLng
		}
		input.EndPoint = &point
	}

	ride, err := h.service.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

func (h *RideHandler) cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := currentClaims(c)
	if err := h.service.Cancel(c.Request.Context(), id, claims.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ride deleted successfully"})
}
