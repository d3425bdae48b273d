package main

import (
	"context"
	"log"
	"os"

	"github.com/autorentpro/backend/internal/adapters/database"
	"github.com/autorentpro/backend/internal/infrastructure/clients/postgres"
	"github.com/autorentpro/backend/internal/infrastructure/observability"
	"github.com/autorentpro/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	observability.InitLogger("autorent-seed", cfg.App.Env, cfg.App.LogLevel)
	logger := observability.GetLogger()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	ctx := context.Background()

	schemaManager := database.NewSchemaManager(pgClient, *logger)
	if err := schemaManager.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		logger.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				returns,
				bookings,
				customers,
				cars
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	carRepo := database.NewCarAdapter(pgClient)
	seedLoader := database.NewSeedLoader(carRepo, *logger)
	if err := seedLoader.EnsureSeedData(ctx); err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}

	count, err := carRepo.Count(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to count cars")
	}
	logger.Info().Int64("cars", count).Msg("seeding completed")
}
