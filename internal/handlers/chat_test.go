package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/answjddnjs04/errand-app/internal/middleware"
	"github.com/answjddnjs04/errand-app/internal/mocks"
	"github.com/answjddnjs04/errand-app/internal/models"
	"github.com/answjddnjs04/errand-app/internal/repositories"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "user-1")
		c.Next()
	})
	r.GET("/api/chat-rooms", handler.ListRooms)
	r.GET("/api/chat-rooms/:id/messages", handler.ListMessages)
	r.POST("/api/chat-rooms/:id/messages", handler.PostMessage)
	return r
}

func participantRoom() models.ChatRoom {
	return models.ChatRoom{
		ID:          3,
		ErrandID:    5,
		RequesterID: "user-2",
		RunnerID:    "user-1",
	}
}

func TestListRoomsSuccess(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	repo.On("ListRoomsForUser", mock.Anything, "user-1").
		Return([]models.ChatRoomDetails{
			{ChatRoom: participantRoom(), Messages: []models.ChatMessage{}},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/chat-rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, float64(3), resp[0]["id"])
	repo.AssertExpectations(t)
}

func TestListMessagesSuccess(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	repo.On("GetRoom", mock.Anything, 3).Return(participantRoom(), nil).Once()
	repo.On("ListMessages", mock.Anything, 3, repositories.MessagePage{}).
		Return([]models.ChatMessage{
			{ID: 1, ChatRoomID: 3, SenderID: "user-2", Message: "어디쯤이세요?", MessageType: models.MessageTypeText, CreatedAt: time.Now()},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/chat-rooms/3/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "어디쯤이세요?", resp[0]["message"])
	repo.AssertExpectations(t)
}

func TestListMessagesPassesPagination(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	repo.On("GetRoom", mock.Anything, 3).Return(participantRoom(), nil).Once()
	repo.On("ListMessages", mock.Anything, 3, repositories.MessagePage{Limit: 20, Before: 50}).
		Return([]models.ChatMessage{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/chat-rooms/3/messages?limit=20&before=50", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestListMessagesRoomNotFound(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	repo.On("GetRoom", mock.Anything, 99).
		Return(models.ChatRoom{}, repositories.ErrChatRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/chat-rooms/99/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertNotCalled(t, "ListMessages")
}

func TestListMessagesNonParticipant(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	room := models.ChatRoom{ID: 3, ErrandID: 5, RequesterID: "user-2", RunnerID: "user-3"}
	repo.On("GetRoom", mock.Anything, 3).Return(room, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/chat-rooms/3/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "ListMessages")
}

func TestPostMessageSuccess(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	repo.On("GetRoom", mock.Anything, 3).Return(participantRoom(), nil).Once()
	repo.On("CreateMessage", mock.Anything, 3, "user-1", "지금 출발해요", models.MessageTypeText).
		Return(models.ChatMessage{ID: 10, ChatRoomID: 3, SenderID: "user-1", Message: "지금 출발해요", MessageType: models.MessageTypeText}, nil).Once()

	body := bytes.NewBufferString(`{"message":"지금 출발해요"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat-rooms/3/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "지금 출발해요", resp["message"])
	repo.AssertExpectations(t)
}

func TestPostMessageEmptyBody(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	repo.On("GetRoom", mock.Anything, 3).Return(participantRoom(), nil).Once()

	body := bytes.NewBufferString(`{"message":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat-rooms/3/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "CreateMessage")
}

func TestPostMessageInvalidType(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	repo.On("GetRoom", mock.Anything, 3).Return(participantRoom(), nil).Once()

	body := bytes.NewBufferString(`{"message":"hi","messageType":"video"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat-rooms/3/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "CreateMessage")
}

func TestPostMessageNonParticipant(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	room := models.ChatRoom{ID: 3, ErrandID: 5, RequesterID: "user-2", RunnerID: "user-3"}
	repo.On("GetRoom", mock.Anything, 3).Return(room, nil).Once()

	body := bytes.NewBufferString(`{"message":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat-rooms/3/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "CreateMessage")
}

func TestPostMessageRoomNotFound(t *testing.T) {
	repo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(repo, nil, testLogger())
	router := setupChatRouter(handler)

	repo.On("GetRoom", mock.Anything, 99).
		Return(models.ChatRoom{}, repositories.ErrChatRoomNotFound).Once()

	body := bytes.NewBufferString(`{"message":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat-rooms/99/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertNotCalled(t, "CreateMessage")
}
