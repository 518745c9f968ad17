package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/answjddnjs04/errand-app/internal/middleware"
	"github.com/answjddnjs04/errand-app/internal/models"
	"github.com/answjddnjs04/errand-app/internal/observability"
	"github.com/answjddnjs04/errand-app/internal/repositories"
	"github.com/answjddnjs04/errand-app/internal/telemetry"
)

// ErrandHandler manages errand lifecycle endpoints.
type ErrandHandler struct {
	errands repositories.ErrandRepository
	audit   *telemetry.AuditEmitter
	logger  *slog.Logger
}

// NewErrandHandler builds an ErrandHandler.
func NewErrandHandler(errands repositories.ErrandRepository, audit *telemetry.AuditEmitter, logger *slog.Logger) *ErrandHandler {
	return &ErrandHandler{
		errands: errands,
		audit:   audit,
		logger:  logger,
	}
}

// List returns waiting errands, most urgent first then newest first.
// GET /api/errands
func (h *ErrandHandler) List(c *gin.Context) {
	filters := repositories.ErrandFilters{
		Urgency: c.Query("urgency"),
	}
	if filters.Urgency != "" && !models.ValidUrgency(filters.Urgency) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid urgency filter"})
		return
	}
	// Distance filters are accepted but not applied; see ErrandFilters.
	if v := c.Query("maxDistance"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			filters.MaxDistance = &d
		}
	}
	if v := c.Query("userLat"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			filters.UserLat = &lat
		}
	}
	if v := c.Query("userLng"); v != "" {
		if lng, err := strconv.ParseFloat(v, 64); err == nil {
			filters.UserLng = &lng
		}
	}

	errands, err := h.errands.ListOpenErrands(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("list errands failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch errands"})
		return
	}

	c.JSON(http.StatusOK, errands)
}

// Get returns one errand joined with its requester.
// GET /api/errands/:id
func (h *ErrandHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid errand id"})
		return
	}

	errand, err := h.errands.GetErrand(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrErrandNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Errand not found"})
		return
	}
	if err != nil {
		h.logger.Error("get errand failed", "error", err, "errand_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch errand"})
		return
	}

	c.JSON(http.StatusOK, errand)
}

// Create posts a new errand for the authenticated requester.
// POST /api/errands
func (h *ErrandHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req struct {
		Title                string   `json:"title" binding:"required"`
		Description          string   `json:"description" binding:"required"`
		StartLocationLat     *float64 `json:"startLocationLat"`
		StartLocationLng     *float64 `json:"startLocationLng"`
		StartLocationAddress *string  `json:"startLocationAddress"`
		EndLocationLat       *float64 `json:"endLocationLat"`
		EndLocationLng       *float64 `json:"endLocationLng"`
		EndLocationAddress   *string  `json:"endLocationAddress"`
		Urgency              string   `json:"urgency"`
		Tip                  int      `json:"tip" binding:"gte=0"`
		EstimatedDistance    *int     `json:"estimatedDistance"`
		EstimatedTime        *int     `json:"estimatedTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid data", "errors": err.Error()})
		return
	}

	if req.Urgency == "" {
		req.Urgency = models.UrgencyNormal
	}
	if !models.ValidUrgency(req.Urgency) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid urgency"})
		return
	}

	errand, err := h.errands.CreateErrand(c.Request.Context(), userID, models.NewErrand{
		Title:                req.Title,
		Description:          req.Description,
		StartLocationLat:     req.StartLocationLat,
		StartLocationLng:     req.StartLocationLng,
		StartLocationAddress: req.StartLocationAddress,
		EndLocationLat:       req.EndLocationLat,
		EndLocationLng:       req.EndLocationLng,
		EndLocationAddress:   req.EndLocationAddress,
		Urgency:              req.Urgency,
		Tip:                  req.Tip,
		EstimatedDistance:    req.EstimatedDistance,
		EstimatedTime:        req.EstimatedTime,
	})
	if err != nil {
		h.logger.Error("create errand failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create errand"})
		return
	}

	observability.IncErrandCreated()
	h.emitAudit(c, "errand_created", "INFO", "Errand created")
	c.JSON(http.StatusOK, errand)
}

// Accept assigns the caller as runner and opens the errand's chat room.
// PATCH /api/errands/:id/accept
func (h *ErrandHandler) Accept(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid errand id"})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	errand, _, err := h.errands.AcceptErrand(c.Request.Context(), id, userID)
	switch {
	case errors.Is(err, repositories.ErrErrandNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Errand not found"})
		return
	case errors.Is(err, repositories.ErrErrandUnavailable):
		c.JSON(http.StatusConflict, gin.H{"message": "Errand is no longer available"})
		return
	case errors.Is(err, repositories.ErrSelfAccept):
		c.JSON(http.StatusConflict, gin.H{"message": "Cannot accept your own errand"})
		return
	case err != nil:
		h.logger.Error("accept errand failed", "error", err, "errand_id", id, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to accept errand"})
		return
	}

	observability.IncErrandAccepted()
	h.emitAudit(c, "errand_accepted", "INFO", "Errand accepted")
	c.JSON(http.StatusOK, errand)
}

// ListMine returns the caller's errands by role.
// GET /api/my-errands?type=requested|accepted
func (h *ErrandHandler) ListMine(c *gin.Context) {
	role := c.Query("type")
	if role != "requested" && role != "accepted" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid type parameter"})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	errands, err := h.errands.ListUserErrands(c.Request.Context(), userID, role)
	if err != nil {
		h.logger.Error("list user errands failed", "error", err, "user_id", userID, "role", role)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user errands"})
		return
	}

	c.JSON(http.StatusOK, errands)
}

func (h *ErrandHandler) emitAudit(c *gin.Context, eventType, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), eventType, level, text, requestIDFromContext(c), userIDFromContext(c))
}
