package memory

import (
	"sync"

	"github.com/google/uuid"
)

// TypingRepository tracks the per-room sets of users currently composing a
// message. Entries are created by typing-start and removed by typing-stop or
// the disconnect cleanup pass; there is no server-side idle timer.
type TypingRepository interface {
	Add(roomID, userID uuid.UUID, displayName string)
	Remove(roomID, userID uuid.UUID)

	// ClearUser removes the user from every typing set and returns the rooms
	// that were affected, so the gateway can notify their subscribers.
	ClearUser(userID uuid.UUID) []uuid.UUID

	Typers(roomID uuid.UUID) map[uuid.UUID]string
}

type typingRepository struct {
	typers map[uuid.UUID]map[uuid.UUID]string

	mu sync.RWMutex
}

func NewTypingRepository() TypingRepository {
	return &typingRepository{
		typers: make(map[uuid.UUID]map[uuid.UUID]string),
	}
}

func (r *typingRepository) Add(roomID, userID uuid.UUID, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.typers[roomID]; !ok {
		r.typers[roomID] = make(map[uuid.UUID]string)
	}

	r.typers[roomID][userID] = displayName
}

func (r *typingRepository) Remove(roomID, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.typers[roomID], userID)

	if len(r.typers[roomID]) == 0 {
		delete(r.typers, roomID)
	}
}

func (r *typingRepository) ClearUser(userID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rooms []uuid.UUID

	for roomID, users := range r.typers {
		if _, ok := users[userID]; !ok {
			continue
		}

		delete(users, userID)
		rooms = append(rooms, roomID)

		if len(users) == 0 {
			delete(r.typers, roomID)
		}
	}

	return rooms
}

func (r *typingRepository) Typers(roomID uuid.UUID) map[uuid.UUID]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[uuid.UUID]string, len(r.typers[roomID]))
	for userID, name := range r.typers[roomID] {
		out[userID] = name
	}

	return out
}
