package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/models"
)

type storeUserRepo struct {
	s *Store
}

func (r *storeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	out := *user
	return &out, nil
}

func (r *storeUserRepo) SearchAddable(ctx context.Context, roomID uuid.UUID, emailFragment string, limit int) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	fragment := strings.ToLower(emailFragment)

	var users []*models.User

	for _, user := range r.s.users {
		if !strings.Contains(strings.ToLower(user.Email), fragment) {
			continue
		}
		if r.s.isMember(roomID, user.ID) {
			continue
		}

		out := *user
		users = append(users, &out)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })

	if len(users) > limit {
		users = users[:limit]
	}

	return users, nil
}
