package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"
	"riffraff/internal/pkg/logger"
	"riffraff/internal/platform/config"
	"riffraff/internal/platform/database"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	timeout := flag.Duration("timeout", 2*time.Minute, "Give up after this long")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Str("dialect", string(db.Dialect)).Msg("migration completed successfully")
}
