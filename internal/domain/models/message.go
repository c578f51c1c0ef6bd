package models

import (
	"time"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypeText  FileType = "text"
	FileTypeImage FileType = "image"
	FileTypeFile  FileType = "file"
)

type Message struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	RoomID    uuid.UUID  `db:"room_id" json:"room_id"`
	SenderID  uuid.UUID  `db:"sender_id" json:"sender_id"`
	Content   string     `db:"content" json:"content,omitempty"`
	FileURL   string     `db:"file_url" json:"file_url,omitempty"`
	FileType  FileType   `db:"file_type" json:"file_type"`
	ReplyTo   *uuid.UUID `db:"reply_to" json:"reply_to,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`

	// Hydrated for display.
	SenderName string        `db:"sender_name" json:"sender_name,omitempty"`
	ReadBy     []Reader      `db:"-" json:"read_by"`
	Reply      *ReplyPreview `db:"-" json:"reply,omitempty"`
}

// Reader is one entry of a message's read receipt, hydrated with the
// reader's display name.
type Reader struct {
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	Name   string    `db:"name" json:"name"`
}

// ReplyPreview is the hydrated view of the message a reply points at.
// The reference is not validated and may be dangling, in which case the
// preview is absent.
type ReplyPreview struct {
	ID         uuid.UUID `db:"id" json:"id"`
	SenderID   uuid.UUID `db:"sender_id" json:"sender_id"`
	SenderName string    `db:"sender_name" json:"sender_name"`
	Content    string    `db:"content" json:"content,omitempty"`
	FileType   FileType  `db:"file_type" json:"file_type"`
}

func NewMessage(roomID, senderID uuid.UUID, content, fileURL string, fileType FileType, replyTo *uuid.UUID) *Message {
	if fileType == "" {
		fileType = FileTypeText
	}

	return &Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		FileURL:   fileURL,
		FileType:  fileType,
		ReplyTo:   replyTo,
		CreatedAt: time.Now().UTC(),
	}
}
