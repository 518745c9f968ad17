package models

import "time"

// ChatRoom is a 1:1 conversation scoped to exactly one matched errand.
// It is created at acceptance time and never afterwards.
type ChatRoom struct {
	ID            int       `db:"id" json:"id"`
	ErrandID      int       `db:"errand_id" json:"errandId"`
	RequesterID   string    `db:"requester_id" json:"requesterId"`
	RunnerID      string    `db:"runner_id" json:"runnerId"`
	LastMessageAt time.Time `db:"last_message_at" json:"lastMessageAt"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// HasParticipant reports whether userID is one of the room's two members.
func (r ChatRoom) HasParticipant(userID string) bool {
	return r.RequesterID == userID || r.RunnerID == userID
}

// Chat message types.
const (
	MessageTypeText    = "text"
	MessageTypeImage   = "image"
	MessageTypeReceipt = "receipt"
)

// ValidMessageType reports whether t names a known message type.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeReceipt:
		return true
	}
	return false
}

// ChatMessage is a single message inside a chat room.
type ChatMessage struct {
	ID          int       `db:"id" json:"id"`
	ChatRoomID  int       `db:"chat_room_id" json:"chatRoomId"`
	SenderID    string    `db:"sender_id" json:"senderId"`
	Message     string    `db:"message" json:"message"`
	MessageType string    `db:"message_type" json:"messageType"`
	IsRead      bool      `db:"is_read" json:"isRead"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ChatRoomDetails is the API view of a room: the errand it belongs to,
// both participants and the full ordered message list.
type ChatRoomDetails struct {
	ChatRoom
	Errand    Errand        `db:"errand" json:"errand"`
	Requester User          `db:"requester" json:"requester"`
	Runner    User          `db:"runner" json:"runner"`
	Messages  []ChatMessage `json:"messages"`
}
