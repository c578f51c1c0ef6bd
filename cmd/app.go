package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"roomchat/internal/application/config"
	"roomchat/internal/application/constant"
	"roomchat/internal/application/metric"
	"roomchat/internal/infra/adapters/memory"
	"roomchat/internal/infra/adapters/postgres"
	"roomchat/internal/infra/adapters/postgres/repository"
	"roomchat/internal/infra/ports/http/handlers"
	"roomchat/internal/infra/ports/http/server"
	"roomchat/internal/infra/ports/ws"
	"roomchat/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	roomRepo := repository.NewRoomRepo(dbConn)
	messageRepo := repository.NewMessageRepo(dbConn)
	userRepo := repository.NewUserRepo(dbConn)
	presenceRepo := memory.NewPresenceRepository()
	typingRepo := memory.NewTypingRepository()

	hub := ws.NewHub()
	go hub.Run(ctx)

	roomUsecase := usecase.NewRoomUsecase(roomRepo)
	adminUsecase := usecase.NewAdminUsecase(roomRepo, userRepo)
	messageUsecase := usecase.NewMessageUsecase(messageRepo)
	gatewayUsecase := usecase.NewGatewayUsecase(presenceRepo, typingRepo, hub)

	roomHandler := handlers.NewRoomHandler(roomUsecase)
	adminHandler := handlers.NewAdminHandler(adminUsecase)
	messageHandler := handlers.NewMessageHandler(messageUsecase)
	wsHandler := ws.NewHandler(cfg, gatewayUsecase)

	echoSrv := server.New(cfg, roomHandler, adminHandler, messageHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
