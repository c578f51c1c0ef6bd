package events

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Event is the envelope for everything crossing the realtime channel,
// in both directions.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound event types (client -> gateway).
const (
	TypeJoinRoom    = "join-room"
	TypeUserOnline  = "user-online"
	TypeSendMessage = "send-message"
	TypeTypingStart = "typing-start"
	TypeTypingStop  = "typing-stop"
	TypeMessageRead = "message-read"
	TypeRoomUpdated = "room-updated"
	TypeUserRemoved = "user-removed"
)

// Outbound event types (gateway -> clients).
const (
	TypeNewMessage        = "new-message"
	TypeUserTyping        = "user-typing"
	TypeUserStoppedTyping = "user-stopped-typing"
	TypeMessageReadUpdate = "message-read-update"
	TypeUserStatusChange  = "user-status-change"
	TypeError             = "error"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type JoinRoom struct {
	RoomID uuid.UUID `json:"roomId"`
}

type UserOnline struct {
	UserID uuid.UUID `json:"userId"`
	RoomID uuid.UUID `json:"roomId"`
}

// SendMessage relays an already-persisted message payload for broadcast.
// The gateway never performs the durable write itself.
type SendMessage struct {
	RoomID  uuid.UUID       `json:"roomId"`
	Message json.RawMessage `json:"message"`
}

type NewMessage struct {
	Message json.RawMessage `json:"message"`
}

type TypingStart struct {
	RoomID   uuid.UUID `json:"roomId"`
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
}

type TypingStop struct {
	RoomID uuid.UUID `json:"roomId"`
	UserID uuid.UUID `json:"userId"`
}

type UserTyping struct {
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
}

type UserStoppedTyping struct {
	UserID uuid.UUID `json:"userId"`
}

type MessageRead struct {
	RoomID    uuid.UUID `json:"roomId"`
	MessageID uuid.UUID `json:"messageId"`
	UserID    uuid.UUID `json:"userId"`
}

type MessageReadUpdate struct {
	MessageID uuid.UUID `json:"messageId"`
	UserID    uuid.UUID `json:"userId"`
}

type UserStatusChange struct {
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"`
}

type RoomUpdated struct {
	RoomID uuid.UUID `json:"roomId"`
}

type UserRemoved struct {
	RoomID uuid.UUID `json:"roomId"`
	UserID uuid.UUID `json:"userId"`
}

type Error struct {
	Message string `json:"message"`
}

// Marshal builds a wire-ready envelope around the given payload.
func Marshal(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Event{Type: eventType, Data: data})
}
