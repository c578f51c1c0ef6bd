package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"roomchat/internal/domain/input"
	"roomchat/internal/infra/appctx"
	"roomchat/internal/infra/ports/http/dto"
	"roomchat/internal/usecase"
)

type RoomHandler struct {
	roomUsecase usecase.RoomUsecase
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase) *RoomHandler {
	return &RoomHandler{roomUsecase: roomUsecase}
}

func (h *RoomHandler) CreateRoomHandler(c echo.Context) error {
	var req dto.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	room, err := h.roomUsecase.CreateRoom(c.Request().Context(), &input.CreateRoomInput{
		CreatorID:  userID,
		Name:       req.Name,
		Type:       req.Type,
		MaxMembers: req.MaxMembers,
	})
	if err != nil {
		return respondError(c, "create room", err)
	}

	return c.JSON(http.StatusCreated, dto.NewRoomResponseFromModel(room, userID))
}

func (h *RoomHandler) ListRoomsHandler(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	rooms, err := h.roomUsecase.ListVisible(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, "list rooms", err)
	}

	return c.JSON(http.StatusOK, dto.NewListRoomsResponse(rooms, userID))
}

func (h *RoomHandler) JoinRoomHandler(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room id"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	result, err := h.roomUsecase.JoinPublic(c.Request().Context(), roomID, userID)
	if err != nil {
		return respondError(c, "join room", err)
	}

	return c.JSON(http.StatusOK, dto.JoinRoomResponse{
		Room:   dto.NewRoomResponseFromModel(result.Room, userID),
		Queued: result.Queued,
	})
}

func (h *RoomHandler) JoinByCodeHandler(c echo.Context) error {
	var req dto.JoinByCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	result, err := h.roomUsecase.JoinByInviteCode(c.Request().Context(), req.InviteCode, userID)
	if err != nil {
		return respondError(c, "join by invite code", err)
	}

	return c.JSON(http.StatusOK, dto.JoinRoomResponse{
		Room:   dto.NewRoomResponseFromModel(result.Room, userID),
		Queued: result.Queued,
	})
}
