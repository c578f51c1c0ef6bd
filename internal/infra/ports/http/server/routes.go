package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"roomchat/internal/application/config"
	"roomchat/internal/infra/ports/http/handlers"
	"roomchat/internal/infra/ports/http/middleware"
	"roomchat/internal/infra/ports/ws"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	adminHandler *handlers.AdminHandler,
	messageHandler *handlers.MessageHandler,
	wsHandler *ws.Handler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		v1.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		{
			v1.GET("/ws", wsHandler.Handle)

			v1.POST("/rooms", roomHandler.CreateRoomHandler)
			v1.GET("/rooms", roomHandler.ListRoomsHandler)
			v1.POST("/rooms/join-by-code", roomHandler.JoinByCodeHandler)
			v1.POST("/rooms/:id/join", roomHandler.JoinRoomHandler)

			v1.GET("/rooms/:id/requests", adminHandler.ListPendingRequestsHandler)
			v1.POST("/rooms/:id/approve/:userId", adminHandler.ApproveRequestHandler)
			v1.DELETE("/rooms/:id/members/:userId", adminHandler.RemoveMemberHandler)
			v1.POST("/rooms/:id/members/:userId", adminHandler.AddMemberHandler)
			v1.PATCH("/rooms/:id/toggle-entry", adminHandler.ToggleEntryHandler)
			v1.PATCH("/rooms/:id", adminHandler.EditRoomHandler)
			v1.GET("/rooms/:id/addable-users", adminHandler.SearchAddableUsersHandler)

			v1.POST("/messages", messageHandler.SendMessageHandler)
			v1.GET("/messages/:roomId", messageHandler.ListMessagesHandler)
			v1.PATCH("/messages/:id/read", messageHandler.MarkReadHandler)
		}
	}

	return e
}
