package models

import (
	"time"

	"github.com/google/uuid"
)

type RoomType string

const (
	RoomTypePublic  RoomType = "public"
	RoomTypePrivate RoomType = "private"
)

// InviteCodeLength is the fixed length of private room invite codes.
const InviteCodeLength = 6

type Room struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Type          RoomType  `db:"type" json:"type"`
	InviteCode    string    `db:"invite_code" json:"invite_code,omitempty"`
	AdminID       uuid.UUID `db:"admin_id" json:"admin_id"`
	MaxMembers    int       `db:"max_members" json:"max_members"`
	IsEntryClosed bool      `db:"is_entry_closed" json:"is_entry_closed"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	// Loaded from the membership tables, not columns of the rooms table.
	Members         []uuid.UUID      `db:"-" json:"members"`
	PendingRequests []PendingRequest `db:"-" json:"pending_requests,omitempty"`
}

// PendingRequest is an unapproved request to join a full or invite-gated room.
type PendingRequest struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name,omitempty"`
	Email       string    `db:"email" json:"email,omitempty"`
	RequestedAt time.Time `db:"requested_at" json:"requested_at"`
}

func NewRoom(name string, roomType RoomType, maxMembers int, adminID uuid.UUID) *Room {
	return &Room{
		ID:         uuid.New(),
		Name:       name,
		Type:       roomType,
		AdminID:    adminID,
		MaxMembers: maxMembers,
		CreatedAt:  time.Now().UTC(),
		Members:    []uuid.UUID{adminID},
	}
}

func (r *Room) IsAdmin(userID uuid.UUID) bool {
	return r.AdminID == userID
}

func (r *Room) IsMember(userID uuid.UUID) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}

	return false
}

func (r *Room) HasPendingRequest(userID uuid.UUID) bool {
	for _, pr := range r.PendingRequests {
		if pr.UserID == userID {
			return true
		}
	}

	return false
}
