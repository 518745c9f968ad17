package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/answjddnjs04/errand-app/internal/middleware"
	"github.com/answjddnjs04/errand-app/internal/repositories"
)

// ProfileHandler manages the caller's own profile.
type ProfileHandler struct {
	users  repositories.UserRepository
	logger *slog.Logger
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(users repositories.UserRepository, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		users:  users,
		logger: logger,
	}
}

// GetMe returns the authenticated caller's profile.
// GET /api/auth/user
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		h.logger.Error("get user failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update applies a partial update to the caller's location and travel range.
// Omitted fields keep their previous values.
// PATCH /api/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req struct {
		Location    *string `json:"location"`
		MaxDistance *int    `json:"maxDistance" binding:"omitempty,gt=0"`
	}
	// Both fields are optional, so a missing body is the empty update.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid data", "errors": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req.Location, req.MaxDistance)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		h.logger.Error("update profile failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}
