package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/input"
	"roomchat/internal/infra/adapters/memory"
)

func TestAdmin_NonAdminForbidden(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, roomUc, adminID, "public", 5)

	_, err := adminUc.ListPendingRequests(context.Background(), room.ID, userID)
	req.ErrorIs(err, apperr.ErrForbidden)

	_, err = adminUc.ToggleEntryClosed(context.Background(), room.ID, userID)
	req.ErrorIs(err, apperr.ErrForbidden)

	_, err = adminUc.RemoveMember(context.Background(), room.ID, userID, adminID)
	req.ErrorIs(err, apperr.ErrForbidden)
}

func TestAdmin_ApproveMovesPendingToMember(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, roomUc, adminID, "public", 1)

	result, err := roomUc.JoinPublic(context.Background(), room.ID, userID)
	req.NoError(err)
	req.True(result.Queued)

	requests, err := adminUc.ListPendingRequests(context.Background(), room.ID, adminID)
	req.NoError(err)
	req.Len(requests, 1)
	req.Equal(userID, requests[0].UserID)
	req.Equal("bob", requests[0].Name)

	// Approval overrides capacity: the room is already full.
	updated, err := adminUc.Approve(context.Background(), room.ID, adminID, userID)
	req.NoError(err)
	req.Contains(updated.Members, userID)
	req.Greater(len(updated.Members), updated.MaxMembers)
	req.Empty(updated.PendingRequests)
}

func TestAdmin_RemoveMember(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, roomUc, adminID, "public", 5)

	_, err := roomUc.JoinPublic(context.Background(), room.ID, userID)
	req.NoError(err)

	updated, err := adminUc.RemoveMember(context.Background(), room.ID, adminID, userID)
	req.NoError(err)
	req.NotContains(updated.Members, userID)

	// A removed user may rejoin.
	result, err := roomUc.JoinPublic(context.Background(), room.ID, userID)
	req.NoError(err)
	req.False(result.Queued)
}

func TestAdmin_ToggleEntryClosed(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")

	room := createRoom(t, roomUc, adminID, "public", 5)

	updated, err := adminUc.ToggleEntryClosed(context.Background(), room.ID, adminID)
	req.NoError(err)
	req.True(updated.IsEntryClosed)

	updated, err = adminUc.ToggleEntryClosed(context.Background(), room.ID, adminID)
	req.NoError(err)
	req.False(updated.IsEntryClosed)
}

func TestAdmin_EditRoom(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, roomUc, adminID, "public", 5)

	_, err := roomUc.JoinPublic(context.Background(), room.ID, userID)
	req.NoError(err)

	name := "renamed"
	maxMembers := 3
	updated, err := adminUc.EditRoom(context.Background(), &input.EditRoomInput{
		RoomID:     room.ID,
		AdminID:    adminID,
		Name:       &name,
		MaxMembers: &maxMembers,
	})
	req.NoError(err)
	req.Equal("renamed", updated.Name)
	req.Equal(3, updated.MaxMembers)
}

func TestAdmin_EditRoomBelowMemberCount(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, roomUc, adminID, "public", 5)

	_, err := roomUc.JoinPublic(context.Background(), room.ID, userID)
	req.NoError(err)

	one := 1
	_, err = adminUc.EditRoom(context.Background(), &input.EditRoomInput{
		RoomID:     room.ID,
		AdminID:    adminID,
		MaxMembers: &one,
	})
	req.ErrorIs(err, apperr.ErrValidation)
	req.Contains(err.Error(), "2")
}

func TestAdmin_SearchAddableUsers(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	bobID := seedUser(store, "bob")
	seedUser(store, "bonnie")

	room := createRoom(t, roomUc, adminID, "public", 5)

	users, err := adminUc.SearchAddableUsers(context.Background(), room.ID, adminID, "bo")
	req.NoError(err)
	req.Len(users, 2)

	// Members disappear from the search results.
	_, err = roomUc.JoinPublic(context.Background(), room.ID, bobID)
	req.NoError(err)

	users, err = adminUc.SearchAddableUsers(context.Background(), room.ID, adminID, "bo")
	req.NoError(err)
	req.Len(users, 1)
	req.Equal("bonnie", users[0].Name)
}

func TestAdmin_SearchFragmentMatchesLiterally(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	seedUser(store, "bob")

	room := createRoom(t, roomUc, adminID, "public", 5)

	// Wildcard characters are plain text, not match-anything patterns.
	users, err := adminUc.SearchAddableUsers(context.Background(), room.ID, adminID, "%")
	req.NoError(err)
	req.Empty(users)

	users, err = adminUc.SearchAddableUsers(context.Background(), room.ID, adminID, "b_b")
	req.NoError(err)
	req.Empty(users)
}

func TestAdmin_AddMemberDirect(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	roomUc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, roomUc, adminID, "public", 2)

	updated, err := adminUc.AddMemberDirect(context.Background(), room.ID, adminID, userID)
	req.NoError(err)
	req.Contains(updated.Members, userID)

	_, err = adminUc.AddMemberDirect(context.Background(), room.ID, adminID, userID)
	req.ErrorIs(err, apperr.ErrAlreadyMember)

	// Unlike approval, direct adds respect capacity.
	thirdID := seedUser(store, "carol")
	_, err = adminUc.AddMemberDirect(context.Background(), room.ID, adminID, thirdID)
	req.ErrorIs(err, apperr.ErrRoomFull)
}

func TestAdmin_UnknownRoom(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")

	_, err := adminUc.ToggleEntryClosed(context.Background(), uuid.New(), adminID)
	req.ErrorIs(err, apperr.ErrNotFound)
}
