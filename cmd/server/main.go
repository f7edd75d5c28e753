package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elliott-wave-analyzer/config"
	"elliott-wave-analyzer/internal/api"
	"elliott-wave-analyzer/internal/cache"
	"elliott-wave-analyzer/internal/database"
	"elliott-wave-analyzer/internal/elliott"
	"elliott-wave-analyzer/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LoggingConfig.Level, cfg.LoggingConfig.JSONFormat)
	log := logging.Component(logger, "server")

	var cacheService *cache.CacheService
	if cfg.RedisConfig.Enabled {
		ttl := time.Duration(cfg.AnalysisConfig.CacheTTLSeconds) * time.Second
		cacheService, err = cache.NewCacheService(cfg.RedisConfig, ttl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize cache")
		}
		defer cacheService.Close()
		if cacheService.IsHealthy() {
			log.Info().Str("address", cfg.RedisConfig.Address).Msg("analysis cache connected")
		} else {
			log.Warn().Msg("redis unreachable, running without cache")
		}
	}

	var repo *database.Repository
	if cfg.DatabaseConfig.Enabled {
		db, err := database.NewDB(cfg.DatabaseConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.RunMigrations(migrateCtx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("migrations failed")
		}
		cancel()
		repo = database.NewRepository(db)
	}

	server := api.NewServer(
		cfg.ServerConfig,
		cfg.AnalysisConfig,
		elliott.NewAnalyzer(),
		cacheService,
		repo,
		logging.Component(logger, "api"),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
