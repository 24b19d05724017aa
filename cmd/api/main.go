package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"potholeai/internal/artifact"
	"potholeai/internal/cache"
	"potholeai/internal/classify"
	"potholeai/internal/config"
	"potholeai/internal/handlers"
	"potholeai/internal/jobs"
	"potholeai/internal/log"
	"potholeai/internal/server"
	"potholeai/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	artifacts, err := artifact.NewStore(cfg.Artifacts.Dir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init artifact store")
	}

	var classifier classify.Classifier = classify.NewScriptClassifier(cfg.Classifier, logger)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, prediction cache disabled")
		} else {
			predictions := cache.NewPredictionCache(redisClient, cfg.Redis.Prefix)
			classifier = classify.NewCached(classifier, predictions, cfg.Redis.TTL, logger)
		}
	}

	analyse := service.NewAnalyseService(artifacts, classifier, logger)
	handlerSet := handlers.NewHandlerSet(logger, cfg, analyse, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(artifacts, cfg.Artifacts.SweepSchedule, cfg.Artifacts.MaxAge, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	logger.Info().
		Str("classifier", cfg.Classifier.Command).
		Strs("classifier_args", cfg.Classifier.Args).
		Str("artifact_dir", artifacts.Dir()).
		Bool("prediction_cache", redisClient != nil).
		Msg("pothole api configured")

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn().Msg("artifact sweep still running at shutdown")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
