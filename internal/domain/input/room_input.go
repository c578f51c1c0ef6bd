package input

import "github.com/google/uuid"

type CreateRoomInput struct {
	CreatorID  uuid.UUID
	Name       string
	Type       string
	MaxMembers int
}

type EditRoomInput struct {
	RoomID  uuid.UUID
	AdminID uuid.UUID

	// Nil fields are left unchanged.
	Name       *string
	MaxMembers *int
}
