package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"roomchat/internal/domain/models"
)

type CreateRoomRequest struct {
	Name       string `json:"name" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=public private"`
	MaxMembers int    `json:"maxMembers" validate:"required,gt=0"`
}

type JoinByCodeRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,len=6"`
}

type EditRoomRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	MaxMembers *int    `json:"maxMembers" validate:"omitempty,gt=0"`
}

type RoomResponse struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Type          string      `json:"type"`
	InviteCode    string      `json:"inviteCode,omitempty"`
	AdminID       uuid.UUID   `json:"adminId"`
	MaxMembers    int         `json:"maxMembers"`
	IsEntryClosed bool        `json:"isEntryClosed"`
	Members       []uuid.UUID `json:"members"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// NewRoomResponseFromModel renders a room for the given viewer. The invite
// code is only disclosed to the room's admin.
func NewRoomResponseFromModel(room *models.Room, viewerID uuid.UUID) RoomResponse {
	resp := RoomResponse{
		ID:            room.ID,
		Name:          room.Name,
		Type:          string(room.Type),
		AdminID:       room.AdminID,
		MaxMembers:    room.MaxMembers,
		IsEntryClosed: room.IsEntryClosed,
		Members:       room.Members,
		CreatedAt:     room.CreatedAt,
	}

	if room.IsAdmin(viewerID) {
		resp.InviteCode = room.InviteCode
	}

	return resp
}

type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

func NewListRoomsResponse(rooms []*models.Room, viewerID uuid.UUID) ListRoomsResponse {
	return ListRoomsResponse{
		Rooms: lo.Map(rooms, func(room *models.Room, _ int) RoomResponse {
			return NewRoomResponseFromModel(room, viewerID)
		}),
	}
}

type JoinRoomResponse struct {
	Room   RoomResponse `json:"room"`
	Queued bool         `json:"queued"`
}

type PendingRequestResponse struct {
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	RequestedAt time.Time `json:"requestedAt"`
}

type ListPendingRequestsResponse struct {
	Requests []PendingRequestResponse `json:"requests"`
}

func NewListPendingRequestsResponse(requests []models.PendingRequest) ListPendingRequestsResponse {
	return ListPendingRequestsResponse{
		Requests: lo.Map(requests, func(r models.PendingRequest, _ int) PendingRequestResponse {
			return PendingRequestResponse{
				UserID:      r.UserID,
				Name:        r.Name,
				Email:       r.Email,
				RequestedAt: r.RequestedAt,
			}
		}),
	}
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

func NewListUsersResponse(users []*models.User) ListUsersResponse {
	return ListUsersResponse{
		Users: lo.Map(users, func(u *models.User, _ int) UserResponse {
			return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
		}),
	}
}
