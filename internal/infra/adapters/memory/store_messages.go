package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/models"
)

type storeMessageRepo struct {
	s *Store
}

func (r *storeMessageRepo) Create(ctx context.Context, message *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *message
	stored.ReadBy = nil
	stored.Reply = nil

	r.s.messages[message.ID] = &stored
	r.s.order = append(r.s.order, message.ID)
	r.s.reads[message.ID] = []uuid.UUID{message.SenderID}

	return nil
}

func (r *storeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	message, ok := r.s.messages[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	return r.hydrate(message), nil
}

func (r *storeMessageRepo) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var messages []*models.Message

	for _, id := range r.s.order {
		if message := r.s.messages[id]; message.RoomID == roomID {
			messages = append(messages, r.hydrate(message))
		}
	}

	// Insertion order already matches arrival; sort keeps the contract exact
	// when callers backdate CreatedAt.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

func (r *storeMessageRepo) MarkRead(ctx context.Context, messageID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.messages[messageID]; !ok {
		return apperr.ErrNotFound
	}

	for _, id := range r.s.reads[messageID] {
		if id == userID {
			return nil
		}
	}

	r.s.reads[messageID] = append(r.s.reads[messageID], userID)

	return nil
}

// hydrate copies the message with sender name, readers and reply preview
// attached. Callers hold the lock.
func (r *storeMessageRepo) hydrate(message *models.Message) *models.Message {
	out := *message
	out.SenderName = r.s.userName(message.SenderID)

	out.ReadBy = make([]models.Reader, 0, len(r.s.reads[message.ID]))
	for _, userID := range r.s.reads[message.ID] {
		out.ReadBy = append(out.ReadBy, models.Reader{UserID: userID, Name: r.s.userName(userID)})
	}

	if message.ReplyTo != nil {
		if target, ok := r.s.messages[*message.ReplyTo]; ok {
			out.Reply = &models.ReplyPreview{
				ID:         target.ID,
				SenderID:   target.SenderID,
				SenderName: r.s.userName(target.SenderID),
				Content:    target.Content,
				FileType:   target.FileType,
			}
		}
	}

	return &out
}
