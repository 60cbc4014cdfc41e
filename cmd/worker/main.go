package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"riffraff/internal/engine/organizations"
	"riffraff/internal/pkg/logger"
	"riffraff/internal/pkg/validator"
	"riffraff/internal/platform/config"
	"riffraff/internal/platform/database"
	"riffraff/internal/platform/repositories"
	"riffraff/internal/workers"
)

// The worker repairs registrations whose default organization was never
// created, e.g. because the server's task queue was full or the process
// stopped before the task ran.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Run a single reconciliation pass and exit")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	userRepo := repositories.NewUserRepository(db)
	orgSvc := organizations.NewService(
		repositories.NewOrganizationRepository(db),
		repositories.NewAddressRepository(db),
		repositories.NewCustomFieldRepository(db),
		userRepo, validator.New(), cfg.Organizations,
	)

	reconciler := workers.NewReconciler(userRepo, orgSvc)

	if *once {
		n, err := reconciler.Run(ctx)
		if err != nil {
			log.Fatal().Err(err).Int("created", n).Msg("reconciliation failed")
		}
		log.Info().Int("created", n).Msg("reconciliation finished")
		return
	}

	log.Info().Dur("interval", cfg.Workers.ReconcileInterval).Msg("starting reconciler")
	reconciler.Loop(ctx, cfg.Workers.ReconcileInterval)
}
