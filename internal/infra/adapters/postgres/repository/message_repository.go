package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/models"
)

type MessageRepository interface {
	// Create persists the message with the sender already in its read set.
	Create(ctx context.Context, message *models.Message) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)

	// ListByRoom returns the room's messages ordered by created_at ascending,
	// hydrated with sender name, reader names and reply preview.
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.Message, error)

	// MarkRead is idempotent: a second call with the same pair is a no-op.
	MarkRead(ctx context.Context, messageID, userID uuid.UUID) error
}

type messageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO messages (id, room_id, sender_id, content, file_url, file_type, reply_to, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		message.ID,
		message.RoomID,
		message.SenderID,
		message.Content,
		message.FileURL,
		message.FileType,
		message.ReplyTo,
		message.CreatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO message_reads (message_id, user_id) VALUES ($1, $2)",
		message.ID,
		message.SenderID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *messageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message

	query := `
		SELECT m.id, m.room_id, m.sender_id, m.content, m.file_url, m.file_type,
		       m.reply_to, m.created_at, u.name AS sender_name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = $1
	`

	err := r.db.GetContext(ctx, &message, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.hydrate(ctx, []*models.Message{&message}); err != nil {
		return nil, err
	}

	return &message, nil
}

func (r *messageRepo) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.Message, error) {
	var messages []*models.Message

	query := `
		SELECT m.id, m.room_id, m.sender_id, m.content, m.file_url, m.file_type,
		       m.reply_to, m.created_at, u.name AS sender_name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = $1
		ORDER BY m.created_at ASC
	`

	if err := r.db.SelectContext(ctx, &messages, query, roomID); err != nil {
		return nil, err
	}

	if err := r.hydrate(ctx, messages); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, messageID, userID uuid.UUID) error {
	var exists bool

	err := r.db.GetContext(
		ctx,
		&exists,
		"SELECT EXISTS (SELECT 1 FROM messages WHERE id = $1)",
		messageID,
	)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ErrNotFound
	}

	_, err = r.db.ExecContext(
		ctx,
		"INSERT INTO message_reads (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		messageID,
		userID,
	)

	return err
}

// hydrate attaches reader names and reply previews to the given messages.
func (r *messageRepo) hydrate(ctx context.Context, messages []*models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := lo.Map(messages, func(m *models.Message, _ int) uuid.UUID { return m.ID })

	type readRow struct {
		MessageID uuid.UUID `db:"message_id"`
		UserID    uuid.UUID `db:"user_id"`
		Name      string    `db:"name"`
	}

	query, args, err := sqlx.In(
		`SELECT mr.message_id, mr.user_id, u.name
		 FROM message_reads mr
		 JOIN users u ON u.id = mr.user_id
		 WHERE mr.message_id IN (?)
		 ORDER BY mr.read_at`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("build read query: %w", err)
	}

	var reads []readRow
	if err := r.db.SelectContext(ctx, &reads, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load read receipts: %w", err)
	}

	byMessage := make(map[uuid.UUID][]models.Reader, len(messages))
	for _, row := range reads {
		byMessage[row.MessageID] = append(byMessage[row.MessageID], models.Reader{UserID: row.UserID, Name: row.Name})
	}

	replyIDs := make([]uuid.UUID, 0)
	for _, m := range messages {
		m.ReadBy = byMessage[m.ID]
		if m.ReplyTo != nil {
			replyIDs = append(replyIDs, *m.ReplyTo)
		}
	}

	if len(replyIDs) == 0 {
		return nil
	}

	query, args, err = sqlx.In(
		`SELECT m.id, m.sender_id, m.content, m.file_type, u.name AS sender_name
		 FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.id IN (?)`,
		replyIDs,
	)
	if err != nil {
		return fmt.Errorf("build reply query: %w", err)
	}

	var previews []models.ReplyPreview
	if err := r.db.SelectContext(ctx, &previews, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load reply previews: %w", err)
	}

	byID := lo.SliceToMap(previews, func(p models.ReplyPreview) (uuid.UUID, models.ReplyPreview) { return p.ID, p })

	for _, m := range messages {
		if m.ReplyTo == nil {
			continue
		}
		// Dangling references simply get no preview.
		if preview, ok := byID[*m.ReplyTo]; ok {
			p := preview
			m.Reply = &p
		}
	}

	return nil
}
