package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/input"
	"roomchat/internal/domain/models"
	"roomchat/internal/infra/adapters/postgres/repository"
)

// Cap on concurrently owned private rooms per admin.
const maxPrivateRoomsPerAdmin = 10

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// JoinResult distinguishes an actual join from a queued request: a join
// against a full room lands in pendingRequests instead of failing.
type JoinResult struct {
	Room   *models.Room
	Queued bool
}

type RoomUsecase interface {
	CreateRoom(ctx context.Context, in *input.CreateRoomInput) (*models.Room, error)
	ListVisible(ctx context.Context, userID uuid.UUID) ([]*models.Room, error)
	JoinPublic(ctx context.Context, roomID, userID uuid.UUID) (*JoinResult, error)
	JoinByInviteCode(ctx context.Context, code string, userID uuid.UUID) (*JoinResult, error)
}

type roomUsecase struct {
	roomRepo repository.RoomRepository
}

func NewRoomUsecase(roomRepo repository.RoomRepository) RoomUsecase {
	return &roomUsecase{roomRepo: roomRepo}
}

func (uc *roomUsecase) CreateRoom(ctx context.Context, in *input.CreateRoomInput) (*models.Room, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name must not be empty", apperr.ErrValidation)
	}

	roomType := models.RoomType(in.Type)
	if roomType != models.RoomTypePublic && roomType != models.RoomTypePrivate {
		return nil, fmt.Errorf("%w: unknown room type %q", apperr.ErrValidation, in.Type)
	}

	if in.MaxMembers <= 0 {
		return nil, fmt.Errorf("%w: max members must be positive", apperr.ErrValidation)
	}

	room := models.NewRoom(name, roomType, in.MaxMembers, in.CreatorID)

	if roomType == models.RoomTypePrivate {
		count, err := uc.roomRepo.CountPrivateByAdmin(ctx, in.CreatorID)
		if err != nil {
			return nil, fmt.Errorf("count private rooms: %w", err)
		}
		if count >= maxPrivateRoomsPerAdmin {
			return nil, fmt.Errorf("%w: at most %d private rooms per admin", apperr.ErrLimitExceeded, maxPrivateRoomsPerAdmin)
		}

		code, err := uc.generateInviteCode(ctx)
		if err != nil {
			return nil, err
		}
		room.InviteCode = code
	}

	if err := uc.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	return room, nil
}

// generateInviteCode draws fresh codes until one is unused. The partial
// unique index on rooms.invite_code is the backstop for the remaining window.
func (uc *roomUsecase) generateInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		buf := make([]byte, models.InviteCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}

		for i, b := range buf {
			buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
		}
		code := string(buf)

		exists, err := uc.roomRepo.InviteCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("generate invite code: no unused code after 10 attempts")
}

func (uc *roomUsecase) ListVisible(ctx context.Context, userID uuid.UUID) ([]*models.Room, error) {
	return uc.roomRepo.ListVisible(ctx, userID)
}

func (uc *roomUsecase) JoinPublic(ctx context.Context, roomID, userID uuid.UUID) (*JoinResult, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}

	if room.Type == models.RoomTypePrivate {
		return nil, fmt.Errorf("%w: private rooms require an invite code", apperr.ErrForbidden)
	}

	if room.IsMember(userID) {
		return &JoinResult{Room: room}, nil
	}

	if room.IsEntryClosed {
		return nil, apperr.ErrEntryClosed
	}

	return uc.joinOrQueue(ctx, roomID, userID)
}

func (uc *roomUsecase) JoinByInviteCode(ctx context.Context, code string, userID uuid.UUID) (*JoinResult, error) {
	room, err := uc.roomRepo.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get room by invite code: %w", err)
	}

	if room.IsMember(userID) {
		return &JoinResult{Room: room}, nil
	}

	return uc.joinOrQueue(ctx, room.ID, userID)
}

// joinOrQueue is the shared tail of both join flows: take a seat while one is
// vacant, otherwise queue a pending request (deduplicated) for the admin.
func (uc *roomUsecase) joinOrQueue(ctx context.Context, roomID, userID uuid.UUID) (*JoinResult, error) {
	joined, err := uc.roomRepo.AddMemberIfVacant(ctx, roomID, userID)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	if !joined {
		if _, err := uc.roomRepo.AddPendingRequest(ctx, roomID, userID); err != nil {
			return nil, fmt.Errorf("queue join request: %w", err)
		}
	}

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}

	return &JoinResult{Room: room, Queued: !joined}, nil
}
