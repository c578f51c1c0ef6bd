package apperr

import "errors"

// Durable-operation error taxonomy. Handlers map these onto HTTP statuses,
// usecases wrap them with context via fmt.Errorf and %w.
var (
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrRoomFull         = errors.New("room is full")
	ErrEntryClosed      = errors.New("entry is closed")
	ErrAlreadyMember    = errors.New("already a member")
	ErrDuplicateRequest = errors.New("join request already pending")
	ErrLimitExceeded    = errors.New("private room limit exceeded")
)
