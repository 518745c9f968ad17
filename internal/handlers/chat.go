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

// ChatHandler manages chat-room endpoints.
type ChatHandler struct {
	rooms  repositories.ChatRepository
	audit  *telemetry.AuditEmitter
	logger *slog.Logger
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(rooms repositories.ChatRepository, audit *telemetry.AuditEmitter, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		rooms:  rooms,
		audit:  audit,
		logger: logger,
	}
}

// ListRooms returns every room the caller participates in, with errand,
// participant profiles and messages, most recent activity first.
// GET /api/chat-rooms
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	rooms, err := h.rooms.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list chat rooms failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch chat rooms"})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// ListMessages returns a room's messages in ascending creation order.
// Only participants may read a room.
// GET /api/chat-rooms/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid chat room id"})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	room, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if errors.Is(err, repositories.ErrChatRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat room not found"})
		return
	}
	if err != nil {
		h.logger.Error("get chat room failed", "error", err, "room_id", roomID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch chat messages"})
		return
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not a chat room participant"})
		return
	}

	page := repositories.MessagePage{}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			page.Limit = limit
		}
	}
	if v := c.Query("before"); v != "" {
		if before, err := strconv.Atoi(v); err == nil {
			page.Before = before
		}
	}

	msgs, err := h.rooms.ListMessages(c.Request.Context(), roomID, page)
	if err != nil {
		h.logger.Error("list chat messages failed", "error", err, "room_id", roomID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch chat messages"})
		return
	}

	c.JSON(http.StatusOK, msgs)
}

// PostMessage stores a message from a participant and bumps the room's
// last-activity time.
// POST /api/chat-rooms/:id/messages
func (h *ChatHandler) PostMessage(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid chat room id"})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	room, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if errors.Is(err, repositories.ErrChatRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat room not found"})
		return
	}
	if err != nil {
		h.logger.Error("get chat room failed", "error", err, "room_id", roomID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not a chat room participant"})
		return
	}

	var req struct {
		Message     string `json:"message" binding:"required"`
		MessageType string `json:"messageType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid data", "errors": err.Error()})
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}
	if !models.ValidMessageType(req.MessageType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid message type"})
		return
	}

	msg, err := h.rooms.CreateMessage(c.Request.Context(), roomID, userID, req.Message, req.MessageType)
	if err != nil {
		h.logger.Error("create chat message failed", "error", err, "room_id", roomID, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}

	observability.IncChatMessageSent()
	h.emitAudit(c, "chat_message_sent", "INFO", "Chat message sent")
	c.JSON(http.StatusOK, msg)
}

func (h *ChatHandler) emitAudit(c *gin.Context, eventType, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), eventType, level, text, requestIDFromContext(c), userIDFromContext(c))
}
