package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/input"
	"roomchat/internal/domain/models"
	"roomchat/internal/infra/adapters/memory"
	"roomchat/internal/infra/adapters/postgres/repository"
)

var inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func seedUser(store *memory.Store, name string) uuid.UUID {
	id := uuid.New()
	store.PutUser(&models.User{ID: id, Name: name, Email: name + "@example.com"})
	return id
}

func createRoom(t *testing.T, uc RoomUsecase, creatorID uuid.UUID, roomType string, maxMembers int) *models.Room {
	t.Helper()

	room, err := uc.CreateRoom(context.Background(), &input.CreateRoomInput{
		CreatorID:  creatorID,
		Name:       "general",
		Type:       roomType,
		MaxMembers: maxMembers,
	})
	require.NoError(t, err)

	return room
}

func TestCreateRoom_Public(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")

	room := createRoom(t, uc, adminID, "public", 5)

	req.Equal(models.RoomTypePublic, room.Type)
	req.Equal(adminID, room.AdminID)
	req.Empty(room.InviteCode)

	// The creator is the sole initial member.
	stored, err := store.Rooms().GetByID(context.Background(), room.ID)
	req.NoError(err)
	req.Equal([]uuid.UUID{adminID}, stored.Members)
	req.Empty(stored.PendingRequests)
}

func TestCreateRoom_PrivateGeneratesInviteCode(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")

	room := createRoom(t, uc, adminID, "private", 5)

	req.Regexp(inviteCodePattern, room.InviteCode)
}

// collidingRoomRepo reports the first n invite-code lookups as taken.
type collidingRoomRepo struct {
	repository.RoomRepository

	collisions int
	checked    []string
}

func (r *collidingRoomRepo) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	r.checked = append(r.checked, code)

	if r.collisions > 0 {
		r.collisions--
		return true, nil
	}

	return r.RoomRepository.InviteCodeExists(ctx, code)
}

func TestCreateRoom_InviteCodesUnique(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")

	codes := make(map[string]struct{})

	for i := 0; i < maxPrivateRoomsPerAdmin; i++ {
		room, err := uc.CreateRoom(context.Background(), &input.CreateRoomInput{
			CreatorID:  adminID,
			Name:       fmt.Sprintf("room-%d", i),
			Type:       "private",
			MaxMembers: 5,
		})
		req.NoError(err)
		req.Regexp(inviteCodePattern, room.InviteCode)
		codes[room.InviteCode] = struct{}{}
	}

	req.Len(codes, maxPrivateRoomsPerAdmin)
}

func TestCreateRoom_InviteCodeCollisionRetried(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	repo := &collidingRoomRepo{RoomRepository: store.Rooms(), collisions: 3}
	uc := NewRoomUsecase(repo)
	adminID := seedUser(store, "alice")

	room := createRoom(t, uc, adminID, "private", 5)

	// Three draws came back taken, so a fourth distinct code was drawn.
	req.Len(repo.checked, 4)
	req.Regexp(inviteCodePattern, room.InviteCode)
	req.Equal(repo.checked[3], room.InviteCode)
	req.NotContains(repo.checked[:3], room.InviteCode)
}

func TestCreateRoom_Validation(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")

	cases := []input.CreateRoomInput{
		{CreatorID: adminID, Name: "  ", Type: "public", MaxMembers: 5},
		{CreatorID: adminID, Name: "general", Type: "secret", MaxMembers: 5},
		{CreatorID: adminID, Name: "general", Type: "public", MaxMembers: 0},
	}

	for _, in := range cases {
		_, err := uc.CreateRoom(context.Background(), &in)
		req.ErrorIs(err, apperr.ErrValidation)
	}
}

func TestCreateRoom_PrivateRoomLimitPerAdmin(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")

	for i := 0; i < maxPrivateRoomsPerAdmin; i++ {
		_, err := uc.CreateRoom(context.Background(), &input.CreateRoomInput{
			CreatorID:  adminID,
			Name:       fmt.Sprintf("room-%d", i),
			Type:       "private",
			MaxMembers: 5,
		})
		req.NoError(err)
	}

	_, err := uc.CreateRoom(context.Background(), &input.CreateRoomInput{
		CreatorID:  adminID,
		Name:       "one too many",
		Type:       "private",
		MaxMembers: 5,
	})
	req.ErrorIs(err, apperr.ErrLimitExceeded)

	// Public rooms are not counted against the limit.
	_, err = uc.CreateRoom(context.Background(), &input.CreateRoomInput{
		CreatorID:  adminID,
		Name:       "public is fine",
		Type:       "public",
		MaxMembers: 5,
	})
	req.NoError(err)
}

func TestJoinPublic_PrivateRoomRejected(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, uc, adminID, "private", 5)

	_, err := uc.JoinPublic(context.Background(), room.ID, userID)
	req.ErrorIs(err, apperr.ErrForbidden)
}

func TestJoinPublic_AlreadyMemberIsNoop(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")

	room := createRoom(t, uc, adminID, "public", 5)

	result, err := uc.JoinPublic(context.Background(), room.ID, adminID)
	req.NoError(err)
	req.False(result.Queued)
	req.Equal([]uuid.UUID{adminID}, result.Room.Members)
}

func TestJoinPublic_EntryClosed(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminUc := NewAdminUsecase(store.Rooms(), store.Users())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, uc, adminID, "public", 5)

	_, err := adminUc.ToggleEntryClosed(context.Background(), room.ID, adminID)
	req.NoError(err)

	_, err = uc.JoinPublic(context.Background(), room.ID, userID)
	req.ErrorIs(err, apperr.ErrEntryClosed)

	// Nothing changed on the room.
	stored, err := store.Rooms().GetByID(context.Background(), room.ID)
	req.NoError(err)
	req.Equal([]uuid.UUID{adminID}, stored.Members)
	req.Empty(stored.PendingRequests)
}

func TestJoinPublic_FullRoomQueuesRequest(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, uc, adminID, "public", 1)

	result, err := uc.JoinPublic(context.Background(), room.ID, userID)
	req.NoError(err)
	req.True(result.Queued)
	req.Equal([]uuid.UUID{adminID}, result.Room.Members)
	req.Len(result.Room.PendingRequests, 1)
	req.Equal(userID, result.Room.PendingRequests[0].UserID)

	// Joining again while queued does not duplicate the request.
	result, err = uc.JoinPublic(context.Background(), room.ID, userID)
	req.NoError(err)
	req.True(result.Queued)
	req.Len(result.Room.PendingRequests, 1)
}

func TestJoinByInviteCode(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, uc, adminID, "private", 2)

	result, err := uc.JoinByInviteCode(context.Background(), room.InviteCode, userID)
	req.NoError(err)
	req.False(result.Queued)
	req.Contains(result.Room.Members, userID)

	_, err = uc.JoinByInviteCode(context.Background(), "ZZZZZZ", userID)
	req.ErrorIs(err, apperr.ErrNotFound)
}

func TestJoinByInviteCode_FullRoomQueues(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")
	userID := seedUser(store, "bob")

	room := createRoom(t, uc, adminID, "private", 1)

	result, err := uc.JoinByInviteCode(context.Background(), room.InviteCode, userID)
	req.NoError(err)
	req.True(result.Queued)
	req.Len(result.Room.PendingRequests, 1)
}

func TestJoin_ConcurrentLastSeat(t *testing.T) {
	req := require.New(t)
	store := memory.NewStore()
	uc := NewRoomUsecase(store.Rooms())
	adminID := seedUser(store, "alice")
	firstID := seedUser(store, "bob")
	secondID := seedUser(store, "carol")

	room := createRoom(t, uc, adminID, "public", 2)

	var wg sync.WaitGroup
	results := make([]*JoinResult, 2)

	for i, userID := range []uuid.UUID{firstID, secondID} {
		wg.Add(1)
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			result, err := uc.JoinPublic(context.Background(), room.ID, userID)
			require.NoError(t, err)
			results[i] = result
		}(i, userID)
	}
	wg.Wait()

	// Exactly one of the two racers takes the last seat, the other is queued.
	queued := 0
	for _, result := range results {
		if result.Queued {
			queued++
		}
	}
	req.Equal(1, queued)

	stored, err := store.Rooms().GetByID(context.Background(), room.ID)
	req.NoError(err)
	req.Len(stored.Members, 2)
	req.Len(stored.PendingRequests, 1)

	// No user is both a member and pending.
	for _, pr := range stored.PendingRequests {
		req.False(stored.IsMember(pr.UserID))
	}
}
