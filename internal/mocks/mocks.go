package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/answjddnjs04/errand-app/internal/models"
	"github.com/answjddnjs04/errand-app/internal/repositories"
)

type ErrandRepositoryMock struct {
	mock.Mock
}

func (m *ErrandRepositoryMock) CreateErrand(ctx context.Context, requesterID string, in models.NewErrand) (models.Errand, error) {
	args := m.Called(ctx, requesterID, in)
	var errand models.Errand
	if val := args.Get(0); val != nil {
		errand = val.(models.Errand)
	}
	return errand, args.Error(1)
}

func (m *ErrandRepositoryMock) ListOpenErrands(ctx context.Context, filters repositories.ErrandFilters) ([]models.ErrandWithRequester, error) {
	args := m.Called(ctx, filters)
	var list []models.ErrandWithRequester
	if val := args.Get(0); val != nil {
		list = val.([]models.ErrandWithRequester)
	}
	return list, args.Error(1)
}

func (m *ErrandRepositoryMock) GetErrand(ctx context.Context, id int) (models.ErrandWithRequester, error) {
	args := m.Called(ctx, id)
	var errand models.ErrandWithRequester
	if val := args.Get(0); val != nil {
		errand = val.(models.ErrandWithRequester)
	}
	return errand, args.Error(1)
}

func (m *ErrandRepositoryMock) AcceptErrand(ctx context.Context, id int, runnerID string) (models.Errand, models.ChatRoom, error) {
	args := m.Called(ctx, id, runnerID)
	var errand models.Errand
	if val := args.Get(0); val != nil {
		errand = val.(models.Errand)
	}
	var room models.ChatRoom
	if val := args.Get(1); val != nil {
		room = val.(models.ChatRoom)
	}
	return errand, room, args.Error(2)
}

func (m *ErrandRepositoryMock) ListUserErrands(ctx context.Context, userID string, role string) ([]models.ErrandWithRequester, error) {
	args := m.Called(ctx, userID, role)
	var list []models.ErrandWithRequester
	if val := args.Get(0); val != nil {
		list = val.([]models.ErrandWithRequester)
	}
	return list, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoomDetails, error) {
	args := m.Called(ctx, userID)
	var rooms []models.ChatRoomDetails
	if val := args.Get(0); val != nil {
		rooms = val.([]models.ChatRoomDetails)
	}
	return rooms, args.Error(1)
}

func (m *ChatRepositoryMock) GetRoom(ctx context.Context, id int) (models.ChatRoom, error) {
	args := m.Called(ctx, id)
	var room models.ChatRoom
	if val := args.Get(0); val != nil {
		room = val.(models.ChatRoom)
	}
	return room, args.Error(1)
}

func (m *ChatRepositoryMock) ListMessages(ctx context.Context, roomID int, page repositories.MessagePage) ([]models.ChatMessage, error) {
	args := m.Called(ctx, roomID, page)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

func (m *ChatRepositoryMock) CreateMessage(ctx context.Context, roomID int, senderID, body, messageType string) (models.ChatMessage, error) {
	args := m.Called(ctx, roomID, senderID, body, messageType)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpsertUser(ctx context.Context, u models.UpsertUser) (models.User, error) {
	args := m.Called(ctx, u)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, id string, location *string, maxDistance *int) (models.User, error) {
	args := m.Called(ctx, id, location, maxDistance)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time) (models.Session, error) {
	args := m.Called(ctx, id, userID, expiresAt)
	var sess models.Session
	if val := args.Get(0); val != nil {
		sess = val.(models.Session)
	}
	return sess, args.Error(1)
}

func (m *SessionRepositoryMock) GetSession(ctx context.Context, id string) (models.Session, error) {
	args := m.Called(ctx, id)
	var sess models.Session
	if val := args.Get(0); val != nil {
		sess = val.(models.Session)
	}
	return sess, args.Error(1)
}

func (m *SessionRepositoryMock) DeleteSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repositories.ErrandRepository = (*ErrandRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.SessionRepository = (*SessionRepositoryMock)(nil)
