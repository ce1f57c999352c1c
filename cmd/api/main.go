package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mk3hierros/internal/cache"
	"mk3hierros/internal/config"
	"mk3hierros/internal/database"
	"mk3hierros/internal/handlers"
	"mk3hierros/internal/log"
	"mk3hierros/internal/repository"
	"mk3hierros/internal/server"
	"mk3hierros/internal/service"
	"mk3hierros/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	if err := database.Migrate(dbPool, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var (
		redisClient *redis.Client
		publicCache cache.Cache = cache.NewMemoryCache()
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		publicCache = cache.NewRedisCache(redisClient)
	} else {
		logger.Info().Msg("redis not configured, using in-memory public cache")
	}

	var blobs service.BlobStore
	if cfg.Storage.Backend == config.StorageBackendObject {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Fatal().Err(err).Msg("ensure bucket failed")
		}
		blobs = objectStore
	}

	categoryRepo := repository.NewCategoryRepository(dbPool)
	workRepo := repository.NewWorkRepository(dbPool)
	imageRepo := repository.NewImageRepository(dbPool)

	categories := service.NewCategoryService(categoryRepo, logger)
	works := service.NewWorkService(workRepo, imageRepo, blobs, logger)
	images := service.NewImageService(workRepo, imageRepo, blobs, cfg.Upload, logger)

	if cfg.Postgres.SeedCategories {
		if _, err := categories.SeedDefaults(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed categories")
		}
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, categories, works, images, publicCache, dbPool)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	logger.Info().
		Str("storage", cfg.Storage.Backend).
		Bool("auth", cfg.Security.JWTSecret != "").
		Msg("mk3hierros api ready")

	waitForShutdown(logger, httpServer, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
