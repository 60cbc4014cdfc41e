package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"riffraff/internal/api"
	"riffraff/internal/api/handlers"
	"riffraff/internal/api/middleware"
	"riffraff/internal/engine/accounts"
	"riffraff/internal/engine/organizations"
	"riffraff/internal/pkg/logger"
	"riffraff/internal/pkg/validator"
	"riffraff/internal/platform/auth"
	"riffraff/internal/platform/config"
	"riffraff/internal/platform/database"
	"riffraff/internal/platform/repositories"
	"riffraff/internal/platform/tasklog"
	"riffraff/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
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

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	addressRepo := repositories.NewAddressRepository(db)
	customFieldRepo := repositories.NewCustomFieldRepository(db)

	// Services
	validate := validator.New()
	tokenSvc, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token service")
	}

	queue := workers.NewQueue(cfg.Workers, tasklog.NewLogger(db))
	queue.Start()

	orgSvc := organizations.NewService(orgRepo, addressRepo, customFieldRepo, userRepo, validate, cfg.Organizations)
	accountSvc := accounts.NewService(userRepo, auth.NewHasher(cfg.Auth.BcryptCost), tokenSvc, validate, queue, orgSvc)

	// Router
	deps := &api.Dependencies{
		AuthHandler:       handlers.NewAuthHandler(accountSvc),
		UserHandler:       handlers.NewUserHandler(accountSvc),
		OrgHandler:        handlers.NewOrgHandler(orgSvc),
		HealthHandler:     handlers.NewHealthHandler(db, queue),
		MetricsHandler:    handlers.NewMetricsHandler(db),
		AuthMiddleware:    middleware.NewAuthMiddleware(accountSvc),
		OrganizationScope: middleware.NewOrganizationScope(orgRepo),
	}
	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("dialect", string(db.Dialect)).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Int("pending", queue.Len()).Msg("task queue did not drain")
	}
}
