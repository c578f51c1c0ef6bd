package memory

import (
	"sync"

	"github.com/google/uuid"
)

// PresenceRepository tracks which connection a user is online with.
// Ephemeral: bounded by process uptime, never persisted.
type PresenceRepository interface {
	Set(userID, connID uuid.UUID)

	// Remove drops the presence entry owned by the given connection and
	// returns the user it belonged to. A connection that never announced
	// presence removes nothing.
	Remove(connID uuid.UUID) (uuid.UUID, bool)

	ConnID(userID uuid.UUID) (uuid.UUID, bool)
	IsOnline(userID uuid.UUID) bool
}

type presenceRepository struct {
	byUser map[uuid.UUID]uuid.UUID
	// Reverse index so disconnect cleanup is O(1) instead of a table scan.
	byConn map[uuid.UUID]uuid.UUID

	mu sync.RWMutex
}

func NewPresenceRepository() PresenceRepository {
	return &presenceRepository{
		byUser: make(map[uuid.UUID]uuid.UUID),
		byConn: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *presenceRepository) Set(userID, connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Single active connection per user: a new connection replaces the old entry.
	if old, ok := r.byUser[userID]; ok {
		delete(r.byConn, old)
	}

	r.byUser[userID] = connID
	r.byConn[connID] = userID
}

func (r *presenceRepository) Remove(connID uuid.UUID) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return uuid.Nil, false
	}

	delete(r.byConn, connID)

	// Only drop the user mapping if it still points at this connection.
	if r.byUser[userID] == connID {
		delete(r.byUser, userID)
	}

	return userID, true
}

func (r *presenceRepository) ConnID(userID uuid.UUID) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.byUser[userID]
	return connID, ok
}

func (r *presenceRepository) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUser[userID]
	return ok
}
