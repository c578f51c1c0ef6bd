package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"roomchat/internal/domain/apperr"
	"roomchat/internal/domain/input"
	"roomchat/internal/domain/models"
	"roomchat/internal/infra/adapters/postgres/repository"
)

const maxUserSearchResults = 5

// AdminUsecase gates room mutations behind the single admin role. Every
// operation re-validates that the requester is the room's admin before
// delegating.
type AdminUsecase interface {
	ListPendingRequests(ctx context.Context, roomID, adminID uuid.UUID) ([]models.PendingRequest, error)
	Approve(ctx context.Context, roomID, adminID, userID uuid.UUID) (*models.Room, error)
	RemoveMember(ctx context.Context, roomID, adminID, userID uuid.UUID) (*models.Room, error)
	ToggleEntryClosed(ctx context.Context, roomID, adminID uuid.UUID) (*models.Room, error)
	EditRoom(ctx context.Context, in *input.EditRoomInput) (*models.Room, error)
	SearchAddableUsers(ctx context.Context, roomID, adminID uuid.UUID, emailFragment string) ([]*models.User, error)
	AddMemberDirect(ctx context.Context, roomID, adminID, userID uuid.UUID) (*models.Room, error)
}

type adminUsecase struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
}

func NewAdminUsecase(roomRepo repository.RoomRepository, userRepo repository.UserRepository) AdminUsecase {
	return &adminUsecase{roomRepo: roomRepo, userRepo: userRepo}
}

func (uc *adminUsecase) authorize(ctx context.Context, roomID, adminID uuid.UUID) (*models.Room, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}

	if !room.IsAdmin(adminID) {
		return nil, fmt.Errorf("%w: only the room admin may do this", apperr.ErrForbidden)
	}

	return room, nil
}

func (uc *adminUsecase) ListPendingRequests(ctx context.Context, roomID, adminID uuid.UUID) ([]models.PendingRequest, error) {
	if _, err := uc.authorize(ctx, roomID, adminID); err != nil {
		return nil, err
	}

	return uc.roomRepo.ListPendingRequests(ctx, roomID)
}

// Approve promotes a pending request to membership. Capacity is deliberately
// not checked on this path: the admin's approval overrides a full room.
func (uc *adminUsecase) Approve(ctx context.Context, roomID, adminID, userID uuid.UUID) (*models.Room, error) {
	if _, err := uc.authorize(ctx, roomID, adminID); err != nil {
		return nil, err
	}

	if err := uc.roomRepo.AddMember(ctx, roomID, userID); err != nil {
		return nil, fmt.Errorf("approve member: %w", err)
	}

	return uc.roomRepo.GetByID(ctx, roomID)
}

func (uc *adminUsecase) RemoveMember(ctx context.Context, roomID, adminID, userID uuid.UUID) (*models.Room, error) {
	if _, err := uc.authorize(ctx, roomID, adminID); err != nil {
		return nil, err
	}

	if err := uc.roomRepo.RemoveMember(ctx, roomID, userID); err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}

	return uc.roomRepo.GetByID(ctx, roomID)
}

func (uc *adminUsecase) ToggleEntryClosed(ctx context.Context, roomID, adminID uuid.UUID) (*models.Room, error) {
	room, err := uc.authorize(ctx, roomID, adminID)
	if err != nil {
		return nil, err
	}

	room.IsEntryClosed = !room.IsEntryClosed

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}

	return room, nil
}

func (uc *adminUsecase) EditRoom(ctx context.Context, in *input.EditRoomInput) (*models.Room, error) {
	room, err := uc.authorize(ctx, in.RoomID, in.AdminID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: room name must not be empty", apperr.ErrValidation)
		}
		room.Name = name
	}

	if in.MaxMembers != nil {
		if *in.MaxMembers <= 0 {
			return nil, fmt.Errorf("%w: max members must be positive", apperr.ErrValidation)
		}
		if *in.MaxMembers < len(room.Members) {
			return nil, fmt.Errorf(
				"%w: max members %d is below the current member count %d",
				apperr.ErrValidation, *in.MaxMembers, len(room.Members),
			)
		}
		room.MaxMembers = *in.MaxMembers
	}

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}

	return room, nil
}

func (uc *adminUsecase) SearchAddableUsers(ctx context.Context, roomID, adminID uuid.UUID, emailFragment string) ([]*models.User, error) {
	if _, err := uc.authorize(ctx, roomID, adminID); err != nil {
		return nil, err
	}

	return uc.userRepo.SearchAddable(ctx, roomID, emailFragment, maxUserSearchResults)
}

func (uc *adminUsecase) AddMemberDirect(ctx context.Context, roomID, adminID, userID uuid.UUID) (*models.Room, error) {
	room, err := uc.authorize(ctx, roomID, adminID)
	if err != nil {
		return nil, err
	}

	if room.IsMember(userID) {
		return nil, apperr.ErrAlreadyMember
	}

	added, err := uc.roomRepo.AddMemberIfVacant(ctx, roomID, userID)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	if !added {
		return nil, apperr.ErrRoomFull
	}

	return uc.roomRepo.GetByID(ctx, roomID)
}
