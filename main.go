package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kendall-kelly/bistro-orders-api/config"
	"github.com/kendall-kelly/bistro-orders-api/logger"
	"github.com/kendall-kelly/bistro-orders-api/middleware"
	"github.com/kendall-kelly/bistro-orders-api/models"
	"github.com/kendall-kelly/bistro-orders-api/routes"
	"github.com/kendall-kelly/bistro-orders-api/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.GoEnv)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	log.Info().Str("env", cfg.GoEnv).Str("timezone", cfg.Location().String()).Msg("starting Bistro Orders API")
	if cfg.EnvFile != "" {
		log.Info().Str("file", cfg.EnvFile).Msg("loaded configuration file")
	} else {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	db, err := config.ConnectDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	log.Info().Msg("database migration completed")

	auth := services.NewAuthService(db, cfg)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	events := services.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	defer func() {
		if err := events.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	images, err := services.NewImageService(ctx, cfg)
	if err != nil {
		return err
	}
	uploadDir := ""
	if local, ok := images.(*services.LocalImageService); ok {
		uploadDir = local.Dir()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := routes.New(routes.Deps{
		Config:    cfg,
		DB:        db,
		Logger:    log,
		Auth:      auth,
		Orders:    services.NewOrderService(db, events),
		Catalog:   services.NewCatalogService(db, images),
		Stats:     services.NewStatsService(db, cfg.Location()),
		Metrics:   middleware.NewMetrics(),
		UploadDir: uploadDir,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server is listening")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped cleanly")
	return nil
}
