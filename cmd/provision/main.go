package main

import (
	"context"
	"log"

	"github.com/autorentpro/backend/internal/adapters/database"
	"github.com/autorentpro/backend/internal/infrastructure/clients/postgres"
	"github.com/autorentpro/backend/internal/infrastructure/clients/redis"
	"github.com/autorentpro/backend/internal/infrastructure/observability"
	"github.com/autorentpro/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger("autorent-provision", cfg.App.Env, cfg.App.LogLevel)
	logger := observability.GetLogger()

	ctx := context.Background()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Database).
		Msg("PostgreSQL client initialized")

	schemaManager := database.NewSchemaManager(pgClient, *logger)
	if err := schemaManager.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("schema provisioning failed")
	}

	carRepo := database.NewCarAdapter(pgClient)
	seedLoader := database.NewSeedLoader(carRepo, *logger)
	if err := seedLoader.EnsureSeedData(ctx); err != nil {
		// A partially seeded catalog is usable; the store itself is up.
		logger.Warn().Err(err).Msg("seed load failed")
	}

	// Verify the event transport when lifecycle events are enabled, so a
	// misconfigured Redis surfaces here instead of on the first booking.
	if cfg.Events.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("event bus transport unreachable, bookings will not publish lifecycle events")
		} else {
			logger.Info().Str("channel", cfg.Events.Channel).Msg("event bus transport verified")
			redisClient.Close()
		}
	}

	stats := pgClient.Stats()
	logger.Info().
		Int("open_connections", stats.OpenConnections).
		Int("max_open_connections", stats.MaxOpenConnections).
		Msg("rental data store provisioned")
}
