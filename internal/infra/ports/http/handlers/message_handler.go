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

type MessageHandler struct {
	messageUsecase usecase.MessageUsecase
}

func NewMessageHandler(messageUsecase usecase.MessageUsecase) *MessageHandler {
	return &MessageHandler{messageUsecase: messageUsecase}
}

func (h *MessageHandler) SendMessageHandler(c echo.Context) error {
	var req dto.SendMessageRequest
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

	message, err := h.messageUsecase.Send(c.Request().Context(), &input.SendMessageInput{
		RoomID:   req.RoomID,
		SenderID: userID,
		Content:  req.Content,
		FileURL:  req.FileURL,
		FileType: req.FileType,
		ReplyTo:  req.ReplyTo,
	})
	if err != nil {
		return respondError(c, "send message", err)
	}

	return c.JSON(http.StatusCreated, dto.NewMessageResponseFromModel(message))
}

func (h *MessageHandler) ListMessagesHandler(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room id"})
	}

	messages, err := h.messageUsecase.ListByRoom(c.Request().Context(), roomID)
	if err != nil {
		return respondError(c, "list messages", err)
	}

	return c.JSON(http.StatusOK, dto.NewListMessagesResponse(messages))
}

func (h *MessageHandler) MarkReadHandler(c echo.Context) error {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid message id"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	message, err := h.messageUsecase.MarkRead(c.Request().Context(), messageID, userID)
	if err != nil {
		return respondError(c, "mark message read", err)
	}

	return c.JSON(http.StatusOK, dto.NewMessageResponseFromModel(message))
}
