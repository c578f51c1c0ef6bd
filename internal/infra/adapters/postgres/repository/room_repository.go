package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/models"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	ListVisible(ctx context.Context, userID uuid.UUID) ([]*models.Room, error)
	CountPrivateByAdmin(ctx context.Context, adminID uuid.UUID) (int, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)

	// AddMemberIfVacant adds the user to the room only while the member count
	// is below max_members. The capacity check and the insert are a single
	// atomic unit. Returns true when the user is a member after the call
	// (freshly added or already present), false when the room is full.
	// Any pending request of the user is cleared on success.
	AddMemberIfVacant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)

	// AddMember adds the user without a capacity check (admin approval path)
	// and clears any pending request in the same transaction.
	AddMember(ctx context.Context, roomID, userID uuid.UUID) error

	RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error

	// AddPendingRequest queues a join request. Returns false when the user
	// already has a pending request or is already a member.
	AddPendingRequest(ctx context.Context, roomID, userID uuid.UUID) (bool, error)

	RemovePendingRequest(ctx context.Context, roomID, userID uuid.UUID) error
	ListPendingRequests(ctx context.Context, roomID uuid.UUID) ([]models.PendingRequest, error)
}

type roomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO rooms (id, name, type, invite_code, admin_id, max_members, is_entry_closed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		room.ID,
		room.Name,
		room.Type,
		room.InviteCode,
		room.AdminID,
		room.MaxMembers,
		room.IsEntryClosed,
		room.CreatedAt,
	)
	if err != nil {
		return err
	}

	// The admin is always a member.
	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO room_members (room_id, user_id) VALUES ($1, $2)",
		room.ID,
		room.AdminID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *roomRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room

	err := r.db.GetContext(ctx, &room, "SELECT * FROM rooms WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadMembership(ctx, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepo) GetByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room

	err := r.db.GetContext(
		ctx,
		&room,
		"SELECT * FROM rooms WHERE invite_code = $1 AND invite_code <> ''",
		code,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadMembership(ctx, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepo) loadMembership(ctx context.Context, room *models.Room) error {
	err := r.db.SelectContext(
		ctx,
		&room.Members,
		"SELECT user_id FROM room_members WHERE room_id = $1 ORDER BY joined_at",
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}

	err = r.db.SelectContext(
		ctx,
		&room.PendingRequests,
		"SELECT user_id, requested_at FROM room_pending_requests WHERE room_id = $1 ORDER BY requested_at",
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("load pending requests: %w", err)
	}

	return nil
}

func (r *roomRepo) Update(ctx context.Context, room *models.Room) error {
	_, err := r.db.ExecContext(
		ctx,
		"UPDATE rooms SET name = $1, max_members = $2, is_entry_closed = $3 WHERE id = $4",
		room.Name,
		room.MaxMembers,
		room.IsEntryClosed,
		room.ID,
	)

	return err
}

func (r *roomRepo) ListVisible(ctx context.Context, userID uuid.UUID) ([]*models.Room, error) {
	var rooms []*models.Room

	query := `
		SELECT r.*
		FROM rooms r
		WHERE r.type = 'public'
		   OR EXISTS (SELECT 1 FROM room_members rm WHERE rm.room_id = r.id AND rm.user_id = $1)
		ORDER BY r.created_at
	`

	if err := r.db.SelectContext(ctx, &rooms, query, userID); err != nil {
		return nil, err
	}

	for _, room := range rooms {
		if err := r.loadMembership(ctx, room); err != nil {
			return nil, err
		}
	}

	return rooms, nil
}

func (r *roomRepo) CountPrivateByAdmin(ctx context.Context, adminID uuid.UUID) (int, error) {
	var count int

	err := r.db.GetContext(
		ctx,
		&count,
		"SELECT count(*) FROM rooms WHERE admin_id = $1 AND type = 'private'",
		adminID,
	)

	return count, err
}

func (r *roomRepo) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool

	err := r.db.GetContext(
		ctx,
		&exists,
		"SELECT EXISTS (SELECT 1 FROM rooms WHERE invite_code = $1)",
		code,
	)

	return exists, err
}

func (r *roomRepo) AddMemberIfVacant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock the room row so the count below cannot race a concurrent join.
	var maxMembers int
	err = tx.GetContext(ctx, &maxMembers, "SELECT max_members FROM rooms WHERE id = $1 FOR UPDATE", roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apperr.ErrNotFound
	}
	if err != nil {
		return false, err
	}

	var isMember bool
	err = tx.GetContext(
		ctx,
		&isMember,
		"SELECT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)",
		roomID,
		userID,
	)
	if err != nil {
		return false, err
	}
	if isMember {
		return true, tx.Commit()
	}

	var count int
	if err := tx.GetContext(ctx, &count, "SELECT count(*) FROM room_members WHERE room_id = $1", roomID); err != nil {
		return false, err
	}
	if count >= maxMembers {
		return false, tx.Commit()
	}

	if err := addMemberTx(ctx, tx, roomID, userID); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *roomRepo) AddMember(ctx context.Context, roomID, userID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := addMemberTx(ctx, tx, roomID, userID); err != nil {
		return err
	}

	return tx.Commit()
}

// addMemberTx inserts the membership row and clears any pending request, so
// a user can never sit in both sets.
func addMemberTx(ctx context.Context, tx *sqlx.Tx, roomID, userID uuid.UUID) error {
	_, err := tx.ExecContext(
		ctx,
		"INSERT INTO room_members (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		roomID,
		userID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		"DELETE FROM room_pending_requests WHERE room_id = $1 AND user_id = $2",
		roomID,
		userID,
	)

	return err
}

func (r *roomRepo) RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(
		ctx,
		"DELETE FROM room_members WHERE room_id = $1 AND user_id = $2",
		roomID,
		userID,
	)

	return err
}

func (r *roomRepo) AddPendingRequest(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO room_pending_requests (room_id, user_id)
		 SELECT $1, $2
		 WHERE NOT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)
		 ON CONFLICT DO NOTHING`,
		roomID,
		userID,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *roomRepo) RemovePendingRequest(ctx context.Context, roomID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(
		ctx,
		"DELETE FROM room_pending_requests WHERE room_id = $1 AND user_id = $2",
		roomID,
		userID,
	)

	return err
}

func (r *roomRepo) ListPendingRequests(ctx context.Context, roomID uuid.UUID) ([]models.PendingRequest, error) {
	var requests []models.PendingRequest

	query := `
		SELECT pr.user_id, u.name, u.email, pr.requested_at
		FROM room_pending_requests pr
		JOIN users u ON u.id = pr.user_id
		WHERE pr.room_id = $1
		ORDER BY pr.requested_at
	`

	if err := r.db.SelectContext(ctx, &requests, query, roomID); err != nil {
		return nil, err
	}

	return requests, nil
}
