package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"roomchat/internal/application/constant"
	"roomchat/internal/domain/apperr"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrEntryClosed):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrRoomFull),
		errors.Is(err, apperr.ErrAlreadyMember),
		errors.Is(err, apperr.ErrDuplicateRequest),
		errors.Is(err, apperr.ErrLimitExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps domain errors onto HTTP statuses. Unexpected errors are
// logged and returned as an opaque 500 so internals never leak to clients.
func respondError(c echo.Context, op string, err error) error {
	status := statusFromError(err)

	if status == http.StatusInternalServerError {
		slog.Error(op, slog.Any(constant.Error, err))
		return c.JSON(status, map[string]string{"error": "internal error"})
	}

	return c.JSON(status, map[string]string{"error": err.Error()})
}
