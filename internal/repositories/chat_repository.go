package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/answjddnjs04/errand-app/internal/models"
)

var ErrChatRoomNotFound = errors.New("chat room not found")

// MessagePage is an optional cursor for message listings. Zero values mean
// "everything": Limit <= 0 disables the limit, Before <= 0 disables the cursor.
type MessagePage struct {
	Limit  int
	Before int
}

// ChatRepository abstracts chat-room and message persistence.
type ChatRepository interface {
	ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoomDetails, error)
	GetRoom(ctx context.Context, id int) (models.ChatRoom, error)
	ListMessages(ctx context.Context, roomID int, page MessagePage) ([]models.ChatMessage, error)
	CreateMessage(ctx context.Context, roomID int, senderID, body, messageType string) (models.ChatMessage, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

const roomColumns = `id, errand_id, requester_id, runner_id, last_message_at, created_at`

const messageColumns = `id, chat_room_id, sender_id, message, message_type, is_read, created_at`

const roomDetailColumns = `r.id, r.errand_id, r.requester_id, r.runner_id, r.last_message_at, r.created_at,
    e.id AS "errand.id", e.title AS "errand.title", e.description AS "errand.description",
    e.start_location_lat AS "errand.start_location_lat", e.start_location_lng AS "errand.start_location_lng",
    e.start_location_address AS "errand.start_location_address",
    e.end_location_lat AS "errand.end_location_lat", e.end_location_lng AS "errand.end_location_lng",
    e.end_location_address AS "errand.end_location_address",
    e.urgency AS "errand.urgency", e.tip AS "errand.tip", e.status AS "errand.status",
    e.requester_id AS "errand.requester_id", e.runner_id AS "errand.runner_id",
    e.estimated_distance AS "errand.estimated_distance", e.estimated_time AS "errand.estimated_time",
    e.created_at AS "errand.created_at", e.updated_at AS "errand.updated_at",
    req.id AS "requester.id", req.email AS "requester.email", req.first_name AS "requester.first_name",
    req.last_name AS "requester.last_name", req.profile_image_url AS "requester.profile_image_url",
    req.location AS "requester.location", req.max_distance AS "requester.max_distance",
    req.rating AS "requester.rating", req.completed_errands AS "requester.completed_errands",
    req.created_at AS "requester.created_at", req.updated_at AS "requester.updated_at",
    run.id AS "runner.id", run.email AS "runner.email", run.first_name AS "runner.first_name",
    run.last_name AS "runner.last_name", run.profile_image_url AS "runner.profile_image_url",
    run.location AS "runner.location", run.max_distance AS "runner.max_distance",
    run.rating AS "runner.rating", run.completed_errands AS "runner.completed_errands",
    run.created_at AS "runner.created_at", run.updated_at AS "runner.updated_at"`

// ListRoomsForUser returns every room the user participates in, most recent
// activity first, each with its errand, both profiles and all messages.
func (r *ChatRepo) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoomDetails, error) {
	query := `SELECT ` + roomDetailColumns + `
        FROM chat_rooms r
        JOIN errands e ON e.id = r.errand_id
        JOIN users req ON req.id = r.requester_id
        JOIN users run ON run.id = r.runner_id
        WHERE r.requester_id = $1 OR r.runner_id = $1
        ORDER BY r.last_message_at DESC`

	rooms := []models.ChatRoomDetails{}
	if err := r.db.SelectContext(ctx, &rooms, query, userID); err != nil {
		return nil, err
	}

	for i := range rooms {
		msgs, err := r.ListMessages(ctx, rooms[i].ID, MessagePage{})
		if err != nil {
			return nil, err
		}
		rooms[i].Messages = msgs
	}
	return rooms, nil
}

// GetRoom fetches a room by id.
func (r *ChatRepo) GetRoom(ctx context.Context, id int) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM chat_rooms WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrChatRoomNotFound
	}
	return room, err
}

// ListMessages returns room messages in ascending creation order. The
// optional cursor selects the window of messages older than Before, still
// returned ascending.
func (r *ChatRepo) ListMessages(ctx context.Context, roomID int, page MessagePage) ([]models.ChatMessage, error) {
	msgs := []models.ChatMessage{}

	if page.Limit <= 0 && page.Before <= 0 {
		err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+`
            FROM chat_messages WHERE chat_room_id=$1 ORDER BY created_at ASC, id ASC`, roomID)
		return msgs, err
	}

	query := `SELECT ` + messageColumns + ` FROM (
            SELECT ` + messageColumns + ` FROM chat_messages
            WHERE chat_room_id=$1 AND ($2::int <= 0 OR id < $2::int)
            ORDER BY created_at DESC, id DESC
            LIMIT CASE WHEN $3::int > 0 THEN $3::int ELSE NULL END
        ) page ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &msgs, query, roomID, page.Before, page.Limit)
	return msgs, err
}

// CreateMessage inserts the message and bumps the room's last_message_at to
// the message's creation time, atomically.
func (r *ChatRepo) CreateMessage(ctx context.Context, roomID int, senderID, body, messageType string) (models.ChatMessage, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.ChatMessage{}, err
	}
	defer tx.Rollback()

	var msg models.ChatMessage
	err = tx.GetContext(ctx, &msg, `INSERT INTO chat_messages (chat_room_id, sender_id, message, message_type)
        VALUES ($1, $2, $3, $4)
        RETURNING `+messageColumns, roomID, senderID, body, messageType)
	if err != nil {
		return models.ChatMessage{}, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE chat_rooms SET last_message_at=$1 WHERE id=$2`, msg.CreatedAt, roomID); err != nil {
		return models.ChatMessage{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.ChatMessage{}, err
	}
	return msg, nil
}
