package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/models"
)

// likeEscaper neutralizes LIKE metacharacters so a search fragment always
// matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// SearchAddable finds users whose email contains the fragment
	// (case-insensitive), excluding current members of the room.
	SearchAddable(ctx context.Context, roomID uuid.UUID, emailFragment string, limit int) ([]*models.User, error)
}

type userRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepo) SearchAddable(ctx context.Context, roomID uuid.UUID, emailFragment string, limit int) ([]*models.User, error) {
	var users []*models.User

	query := `
		SELECT u.*
		FROM users u
		WHERE u.email ILIKE '%' || $1 || '%'
		  AND NOT EXISTS (SELECT 1 FROM room_members rm WHERE rm.room_id = $2 AND rm.user_id = u.id)
		ORDER BY u.email
		LIMIT $3
	`

	if err := r.db.SelectContext(ctx, &users, query, likeEscaper.Replace(emailFragment), roomID, limit); err != nil {
		return nil, err
	}

	return users, nil
}
