package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"roomchat/internal/domain/models"
)

type SendMessageRequest struct {
	RoomID   uuid.UUID  `json:"roomId" validate:"required"`
	Content  string     `json:"content"`
	FileURL  string     `json:"fileUrl" validate:"omitempty,url"`
	FileType string     `json:"fileType" validate:"omitempty,oneof=text image file"`
	ReplyTo  *uuid.UUID `json:"replyTo"`
}

type ReaderResponse struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
}

type ReplyPreviewResponse struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	FileType   string    `json:"fileType,omitempty"`
}

type MessageResponse struct {
	ID         uuid.UUID             `json:"id"`
	RoomID     uuid.UUID             `json:"roomId"`
	SenderID   uuid.UUID             `json:"senderId"`
	SenderName string                `json:"senderName"`
	Content    string                `json:"content"`
	FileURL    string                `json:"fileUrl,omitempty"`
	FileType   string                `json:"fileType,omitempty"`
	ReplyTo    *ReplyPreviewResponse `json:"replyTo,omitempty"`
	ReadBy     []ReaderResponse      `json:"readBy"`
	CreatedAt  time.Time             `json:"createdAt"`
}

func NewMessageResponseFromModel(m *models.Message) MessageResponse {
	resp := MessageResponse{
		ID:         m.ID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		FileURL:    m.FileURL,
		FileType:   string(m.FileType),
		CreatedAt:  m.CreatedAt,
		ReadBy: lo.Map(m.ReadBy, func(r models.Reader, _ int) ReaderResponse {
			return ReaderResponse{UserID: r.UserID, Name: r.Name}
		}),
	}

	if m.Reply != nil {
		resp.ReplyTo = &ReplyPreviewResponse{
			ID:         m.Reply.ID,
			SenderID:   m.Reply.SenderID,
			SenderName: m.Reply.SenderName,
			Content:    m.Reply.Content,
			FileType:   string(m.Reply.FileType),
		}
	}

	return resp
}

type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

func NewListMessagesResponse(messages []*models.Message) ListMessagesResponse {
	return ListMessagesResponse{
		Messages: lo.Map(messages, func(m *models.Message, _ int) MessageResponse {
			return NewMessageResponseFromModel(m)
		}),
	}
}
