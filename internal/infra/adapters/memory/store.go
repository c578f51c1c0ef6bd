package memory

import (
	"sync"

	"github.com/google/uuid"

	"roomchat/internal/domain/models"
	"roomchat/internal/infra/adapters/postgres/repository"
)

// Store is an in-memory implementation of the durable repositories, sharing
// one lock so that check-then-act sequences (capacity before join, dedupe
// before queue) are atomic, matching the guarantees of the postgres adapter.
type Store struct {
	users    map[uuid.UUID]*models.User
	rooms    map[uuid.UUID]*models.Room
	members  map[uuid.UUID][]uuid.UUID
	pending  map[uuid.UUID][]models.PendingRequest
	messages map[uuid.UUID]*models.Message
	order    []uuid.UUID
	reads    map[uuid.UUID][]uuid.UUID

	mu sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*models.User),
		rooms:    make(map[uuid.UUID]*models.Room),
		members:  make(map[uuid.UUID][]uuid.UUID),
		pending:  make(map[uuid.UUID][]models.PendingRequest),
		messages: make(map[uuid.UUID]*models.Message),
		reads:    make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *Store) Rooms() repository.RoomRepository {
	return &storeRoomRepo{s: s}
}

func (s *Store) Messages() repository.MessageRepository {
	return &storeMessageRepo{s: s}
}

func (s *Store) Users() repository.UserRepository {
	return &storeUserRepo{s: s}
}

// PutUser seeds the user directory.
func (s *Store) PutUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	s.users[u.ID] = &u
}

func (s *Store) userName(id uuid.UUID) string {
	if u, ok := s.users[id]; ok {
		return u.Name
	}

	return ""
}

func (s *Store) isMember(roomID, userID uuid.UUID) bool {
	for _, id := range s.members[roomID] {
		if id == userID {
			return true
		}
	}

	return false
}

func (s *Store) hasPending(roomID, userID uuid.UUID) bool {
	for _, pr := range s.pending[roomID] {
		if pr.UserID == userID {
			return true
		}
	}

	return false
}
