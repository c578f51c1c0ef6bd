package input

import "github.com/google/uuid"

type SendMessageInput struct {
	RoomID   uuid.UUID
	SenderID uuid.UUID
	Content  string
	FileURL  string
	FileType string
	ReplyTo  *uuid.UUID
}
