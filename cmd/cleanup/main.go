package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"markethub/internal/config"
	"markethub/internal/database"
	"markethub/internal/repository"
)

// Deletes expired password reset tokens. Meant to run from cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := repository.NewResetTokenRepository(db).DeleteExpired(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("delete expired reset tokens")
	}

	log.Info().Int64("deleted", deleted).Msg("cleanup complete")
}
