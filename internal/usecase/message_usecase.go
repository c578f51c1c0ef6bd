package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/input"
	"roomchat/internal/domain/models"
	"roomchat/internal/infra/adapters/postgres/repository"
)

type MessageUsecase interface {
	Send(ctx context.Context, in *input.SendMessageInput) (*models.Message, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.Message, error)
	MarkRead(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error)
}

type messageUsecase struct {
	messageRepo repository.MessageRepository
}

func NewMessageUsecase(messageRepo repository.MessageRepository) MessageUsecase {
	return &messageUsecase{messageRepo: messageRepo}
}

// Send persists the message with the sender already in its read set and
// returns it hydrated for display. The room and reply references are taken
// as-is, without an existence check.
func (uc *messageUsecase) Send(ctx context.Context, in *input.SendMessageInput) (*models.Message, error) {
	if in.Content == "" && in.FileURL == "" {
		return nil, fmt.Errorf("%w: message needs content or a file", apperr.ErrValidation)
	}

	fileType := models.FileType(in.FileType)
	switch fileType {
	case "", models.FileTypeText, models.FileTypeImage, models.FileTypeFile:
	default:
		return nil, fmt.Errorf("%w: unknown file type %q", apperr.ErrValidation, in.FileType)
	}

	message := models.NewMessage(in.RoomID, in.SenderID, in.Content, in.FileURL, fileType, in.ReplyTo)

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	return uc.messageRepo.GetByID(ctx, message.ID)
}

func (uc *messageUsecase) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.Message, error) {
	return uc.messageRepo.ListByRoom(ctx, roomID)
}

func (uc *messageUsecase) MarkRead(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error) {
	if err := uc.messageRepo.MarkRead(ctx, messageID, userID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}

	return uc.messageRepo.GetByID(ctx, messageID)
}
