package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/models"
)

type storeRoomRepo struct {
	s *Store
}

func (r *storeRoomRepo) Create(ctx context.Context, room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *room
	stored.Members = nil
	stored.PendingRequests = nil

	r.s.rooms[room.ID] = &stored
	r.s.members[room.ID] = []uuid.UUID{room.AdminID}

	return nil
}

func (r *storeRoomRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	return r.hydrate(room), nil
}

func (r *storeRoomRepo) GetByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, room := range r.s.rooms {
		if room.InviteCode != "" && room.InviteCode == code {
			return r.hydrate(room), nil
		}
	}

	return nil, apperr.ErrNotFound
}

// hydrate copies the room with its membership attached. Callers hold the lock.
func (r *storeRoomRepo) hydrate(room *models.Room) *models.Room {
	out := *room

	out.Members = append([]uuid.UUID(nil), r.s.members[room.ID]...)

	out.PendingRequests = make([]models.PendingRequest, 0, len(r.s.pending[room.ID]))
	for _, pr := range r.s.pending[room.ID] {
		pr.Name = r.s.userName(pr.UserID)
		out.PendingRequests = append(out.PendingRequests, pr)
	}

	return &out
}

func (r *storeRoomRepo) Update(ctx context.Context, room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.rooms[room.ID]
	if !ok {
		return apperr.ErrNotFound
	}

	stored.Name = room.Name
	stored.MaxMembers = room.MaxMembers
	stored.IsEntryClosed = room.IsEntryClosed

	return nil
}

func (r *storeRoomRepo) ListVisible(ctx context.Context, userID uuid.UUID) ([]*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rooms []*models.Room

	for _, room := range r.s.rooms {
		if room.Type == models.RoomTypePublic || r.s.isMember(room.ID, userID) {
			rooms = append(rooms, r.hydrate(room))
		}
	}

	return rooms, nil
}

func (r *storeRoomRepo) CountPrivateByAdmin(ctx context.Context, adminID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, room := range r.s.rooms {
		if room.Type == models.RoomTypePrivate && room.AdminID == adminID {
			count++
		}
	}

	return count, nil
}

func (r *storeRoomRepo) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, room := range r.s.rooms {
		if room.InviteCode != "" && room.InviteCode == code {
			return true, nil
		}
	}

	return false, nil
}

func (r *storeRoomRepo) AddMemberIfVacant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.rooms[roomID]
	if !ok {
		return false, apperr.ErrNotFound
	}

	if r.s.isMember(roomID, userID) {
		return true, nil
	}

	if len(r.s.members[roomID]) >= room.MaxMembers {
		return false, nil
	}

	r.addMemberLocked(roomID, userID)

	return true, nil
}

func (r *storeRoomRepo) AddMember(ctx context.Context, roomID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[roomID]; !ok {
		return apperr.ErrNotFound
	}

	if !r.s.isMember(roomID, userID) {
		r.addMemberLocked(roomID, userID)
	}

	return nil
}

// addMemberLocked inserts the membership and clears any pending request, so a
// user never sits in both sets. Callers hold the lock.
func (r *storeRoomRepo) addMemberLocked(roomID, userID uuid.UUID) {
	r.s.members[roomID] = append(r.s.members[roomID], userID)
	r.removePendingLocked(roomID, userID)
}

func (r *storeRoomRepo) RemoveMember(ctx context.Context, roomID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	members := r.s.members[roomID]
	for i, id := range members {
		if id == userID {
			r.s.members[roomID] = append(members[:i], members[i+1:]...)
			break
		}
	}

	return nil
}

func (r *storeRoomRepo) AddPendingRequest(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[roomID]; !ok {
		return false, apperr.ErrNotFound
	}

	if r.s.isMember(roomID, userID) || r.s.hasPending(roomID, userID) {
		return false, nil
	}

	r.s.pending[roomID] = append(r.s.pending[roomID], models.PendingRequest{
		UserID:      userID,
		RequestedAt: time.Now().UTC(),
	})

	return true, nil
}

func (r *storeRoomRepo) RemovePendingRequest(ctx context.Context, roomID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.removePendingLocked(roomID, userID)

	return nil
}

func (r *storeRoomRepo) removePendingLocked(roomID, userID uuid.UUID) {
	pending := r.s.pending[roomID]
	for i, pr := range pending {
		if pr.UserID == userID {
			r.s.pending[roomID] = append(pending[:i], pending[i+1:]...)
			return
		}
	}
}

func (r *storeRoomRepo) ListPendingRequests(ctx context.Context, roomID uuid.UUID) ([]models.PendingRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.PendingRequest, 0, len(r.s.pending[roomID]))
	for _, pr := range r.s.pending[roomID] {
		pr.Name = r.s.userName(pr.UserID)
		if u, ok := r.s.users[pr.UserID]; ok {
			pr.Email = u.Email
		}
		out = append(out, pr)
	}

	return out, nil
}
