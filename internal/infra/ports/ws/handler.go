package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"roomchat/internal/application/config"
	"roomchat/internal/application/constant"
	"roomchat/internal/application/metric"
	"roomchat/internal/infra/appctx"
	"roomchat/internal/usecase"
)

type Handler struct {
	upgrader *websocket.Upgrader

	gateway usecase.GatewayUsecase
}

func NewHandler(cfg *config.Config, gateway usecase.GatewayUsecase) *Handler {
	return &Handler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		gateway: gateway,
	}
}

// Handle upgrades the request and runs the connection's read loop on the
// handler goroutine; echo keeps the request alive until it returns.
func (h *Handler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := appctx.UserID(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"websocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}

	client := NewClient(userID, conn, h.gateway)

	metric.IncrementWSActiveConnections()
	defer metric.DecrementWSActiveConnections()

	slog.Info(
		"websocket connected",
		slog.Any(constant.ConnID, client.ConnID()),
		slog.Any(constant.UserID, userID),
	)

	go client.WritePump(ctx)
	client.ReadPump(ctx)

	slog.Info(
		"websocket disconnected",
		slog.Any(constant.ConnID, client.ConnID()),
		slog.Any(constant.UserID, userID),
	)

	return nil
}
