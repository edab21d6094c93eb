package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucavt/carpool/internal/service/users"
)

// UserHandler covers the authenticated user-facing endpoints that are not
// tied to a single ride: the notifications feed, ratings and reports.
type UserHandler struct {
	service users.UserUseCase
}

type rateRequest struct {
	Rating      float64 `json:"rating" binding:"required"`
	Description string  `json:"description"`
}

type reportRequest struct {
	ReportedID int64  `json:"reported_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

func NewUserHandler(service users.UserUseCase) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterNotifications(router *gin.RouterGroup) {
	router.GET("/", h.listNotifications)
	router.PATCH("/:id/read", h.markRead)
	router.PATCH("/mark-all-read", h.markAllRead)
}

func (h *UserHandler) RegisterRatings(router *gin.RouterGroup) {
	router.POST("/:id", h.rate)
}

func (h *UserHandler) RegisterReports(router *gin.RouterGroup) {
	router.POST("/", h.report)
}

func (h *UserHandler) listNotifications(c *gin.Context) {
	claims := currentClaims(c)
	list, err := h.service.Notifications(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *UserHandler) markRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	claims := currentClaims(c)
	notification, err := h.service.MarkNotificationRead(c.Request.Context(), id, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

func (h *UserHandler) markAllRead(c *gin.Context) {
	claims := currentClaims(c)
	updated, err := h.service.MarkAllNotificationsRead(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *UserHandler) rate(c *gin.Context) {
	targetID, ok := pathID(c)
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := currentClaims(c)
	err := h.service.RateUser(c.Request.Context(), users.RateInput{
		OriginUserID: claims.UserID,
		TargetUserID: targetID,
		Description:  req.Description,
		Rating:       req.Rating,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Rating submitted"})
}

func (h *UserHandler) report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := currentClaims(c)
	err := h.service.ReportUser(c.Request.Context(), users.ReportInput{
		ReporterID: claims.UserID,
		ReportedID: req.ReportedID,
		Reason:     req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Report submitted"})
}
