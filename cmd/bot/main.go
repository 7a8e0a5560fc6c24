package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"instantwin-bot/internal/common/clock"
	"instantwin-bot/internal/common/config"
	"instantwin-bot/internal/common/logger"
	auditservice "instantwin-bot/internal/features/audit/service"
	commandservice "instantwin-bot/internal/features/commands/service"
	giveawayservice "instantwin-bot/internal/features/giveaway/service"
	inventoryservice "instantwin-bot/internal/features/inventory/service"
	permissionservice "instantwin-bot/internal/features/permissions/service"
	stateredis "instantwin-bot/internal/features/state/repository/redis"
	statestore "instantwin-bot/internal/features/state/service"
	apphttp "instantwin-bot/internal/http"
	"instantwin-bot/internal/platform/chat"
	redisplatform "instantwin-bot/internal/platform/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("instantwin-bot", cfg.Debug)

	redisClient, err := redisplatform.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	store := statestore.NewStore(stateredis.NewStateRepository(redisClient, cfg.Bot.StateKey))
	if err := store.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load state document")
	}

	chatClient := chat.NewConsoleClient(log.Logger)

	inventory := inventoryservice.NewInventoryService(store)
	permissions := permissionservice.NewPermissionService(store)
	audit := auditservice.NewAuditService(store, chatClient)
	registry := giveawayservice.NewSessionRegistry()
	giveaways := giveawayservice.NewGiveawayService(
		registry, inventory, store, chatClient, audit, clock.System(),
		cfg.Bot.EntryEmoji, cfg.Bot.MinDurationMinutes)
	router := commandservice.NewRouter(giveaways, inventory, permissions, audit)

	logger.Info().Msg("Services initialized")

	server := apphttp.NewServer(cfg, redisClient, router, giveaways)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Bot exited")
}
