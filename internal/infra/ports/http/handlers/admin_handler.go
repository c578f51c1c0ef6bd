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

type AdminHandler struct {
	adminUsecase usecase.AdminUsecase
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase}
}

// adminCall extracts the (roomID, adminID) pair every admin route needs.
func adminCall(c echo.Context) (roomID, adminID uuid.UUID, err error) {
	roomID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}

	adminID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user")
	}

	return roomID, adminID, nil
}

func (h *AdminHandler) ListPendingRequestsHandler(c echo.Context) error {
	roomID, adminID, err := adminCall(c)
	if err != nil {
		return err
	}

	requests, err := h.adminUsecase.ListPendingRequests(c.Request().Context(), roomID, adminID)
	if err != nil {
		return respondError(c, "list pending requests", err)
	}

	return c.JSON(http.StatusOK, dto.NewListPendingRequestsResponse(requests))
}

func (h *AdminHandler) ApproveRequestHandler(c echo.Context) error {
	roomID, adminID, err := adminCall(c)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	room, err := h.adminUsecase.Approve(c.Request().Context(), roomID, adminID, userID)
	if err != nil {
		return respondError(c, "approve request", err)
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponseFromModel(room, adminID))
}

func (h *AdminHandler) RemoveMemberHandler(c echo.Context) error {
	roomID, adminID, err := adminCall(c)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	room, err := h.adminUsecase.RemoveMember(c.Request().Context(), roomID, adminID, userID)
	if err != nil {
		return respondError(c, "remove member", err)
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponseFromModel(room, adminID))
}

func (h *AdminHandler) ToggleEntryHandler(c echo.Context) error {
	roomID, adminID, err := adminCall(c)
	if err != nil {
		return err
	}

	room, err := h.adminUsecase.ToggleEntryClosed(c.Request().Context(), roomID, adminID)
	if err != nil {
		return respondError(c, "toggle entry", err)
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponseFromModel(room, adminID))
}

func (h *AdminHandler) EditRoomHandler(c echo.Context) error {
	roomID, adminID, err := adminCall(c)
	if err != nil {
		return err
	}

	var req dto.EditRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	room, err := h.adminUsecase.EditRoom(c.Request().Context(), &input.EditRoomInput{
		RoomID:     roomID,
		AdminID:    adminID,
		Name:       req.Name,
		MaxMembers: req.MaxMembers,
	})
	if err != nil {
		return respondError(c, "edit room", err)
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponseFromModel(room, adminID))
}

func (h *AdminHandler) SearchAddableUsersHandler(c echo.Context) error {
	roomID, adminID, err := adminCall(c)
	if err != nil {
		return err
	}

	users, err := h.adminUsecase.SearchAddableUsers(c.Request().Context(), roomID, adminID, c.QueryParam("q"))
	if err != nil {
		return respondError(c, "search addable users", err)
	}

	return c.JSON(http.StatusOK, dto.NewListUsersResponse(users))
}

func (h *AdminHandler) AddMemberHandler(c echo.Context) error {
	roomID, adminID, err := adminCall(c)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	room, err := h.adminUsecase.AddMemberDirect(c.Request().Context(), roomID, adminID, userID)
	if err != nil {
		return respondError(c, "add member", err)
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponseFromModel(room, adminID))
}
