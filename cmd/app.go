package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/averix/teamsync/internal/application/config"
	"github.com/averix/teamsync/internal/application/constant"
	"github.com/averix/teamsync/internal/application/metric"
	"github.com/averix/teamsync/internal/domain/models"
	"github.com/averix/teamsync/internal/infra/adapters/memory"
	"github.com/averix/teamsync/internal/infra/ports/http/handlers"
	"github.com/averix/teamsync/internal/infra/ports/http/server"
	"github.com/averix/teamsync/internal/usecase"
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

	registry := memory.NewRoomRegistry(models.RoomSettings{
		MaxParticipants:    cfg.Room.MaxParticipants,
		ScreenShareEnabled: cfg.Room.ScreenShareEnabled,
		ChatEnabled:        cfg.Room.ChatEnabled,
	})
	chatStore := memory.NewChatStore()
	connRepo := memory.NewConnectionRepository()

	sessionUsecase := usecase.NewSessionUsecase(registry, chatStore, connRepo)
	signalingUsecase := usecase.NewSignalingUsecase(connRepo)
	chatUsecase := usecase.NewChatUsecase(&cfg.Chat, registry, chatStore, connRepo)

	roomHandler := handlers.NewRoomHandler(registry, chatStore)
	iceHandler := handlers.NewIceHandler(cfg)
	wsHandler := handlers.NewWebSocketHandler(cfg, sessionUsecase, signalingUsecase, chatUsecase, connRepo)

	echoSrv := server.New(cfg, roomHandler, iceHandler, wsHandler)

	metricsSrv := metric.NewServer()

	go runChatJanitor(ctx, chatStore, cfg.Chat)

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

// runChatJanitor prunes chat logs past the retention window. Chat history is
// memory-only; this bounds its growth in long-lived rooms.
func runChatJanitor(ctx context.Context, chatStore memory.ChatStore, cfg config.ChatConfig) {
	ticker := time.NewTicker(cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := chatStore.PruneAll(cfg.Retention); removed > 0 {
				slog.Info("pruned chat messages", slog.Int("removed", removed))
			}
		}
	}
}
