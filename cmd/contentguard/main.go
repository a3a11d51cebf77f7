package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pawcraft/contentguard/pkg/config"
	"github.com/pawcraft/contentguard/pkg/detectors"
	handlers "github.com/pawcraft/contentguard/pkg/handlers/http"
	infraLogger "github.com/pawcraft/contentguard/pkg/infra/logger"
	"github.com/pawcraft/contentguard/pkg/infra/prometheus"
	"github.com/pawcraft/contentguard/pkg/policy"
	"github.com/pawcraft/contentguard/pkg/sanitizer"
	"github.com/pawcraft/contentguard/pkg/server"
	"github.com/pawcraft/contentguard/pkg/telemetry"
	"github.com/pawcraft/contentguard/pkg/types"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.WithError(err).Warn("running with default configuration")
	}
	cfg := config.GetConfig()

	// An unmapped content type is a programming error; refuse to start.
	for _, ct := range types.AllContentTypes() {
		if !policy.Registered(ct) {
			logger.Fatalf("no sanitization policy registered for content type %q", ct)
		}
	}

	prometheus.Initialize()

	exporter := buildExporter(cfg, logger)
	reporter := telemetry.NewReporter(logger, exporter, cfg.Reporting.Workers)
	defer reporter.Shutdown()

	tracker := buildTracker(cfg, logger)

	registry := detectors.NewRegistry(logger)
	cache := sanitizer.NewResultCache(cfg.Cache.Capacity)
	engine := sanitizer.New(logger, registry, cache, reporter, sanitizer.Config{
		MaxContentBytes:   cfg.Security.MaxContentBytes,
		MaxNestingDepth:   cfg.Security.MaxNestingDepth,
		PerformanceBudget: time.Duration(cfg.Security.PerformanceBudgetMs) * time.Millisecond,
		CacheCapacity:     cfg.Cache.Capacity,
	})

	srv := server.New(cfg, logger, handlers.HandlerTransport{
		SanitizeContentHandler: handlers.NewSanitizeContentHandler(logger, engine, reporter, tracker),
		ValidateContentHandler: handlers.NewValidateContentHandler(logger, engine),
		ClearCacheHandler:      handlers.NewClearCacheHandler(logger, engine),
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.WithError(err).Error("server shutdown failed")
		}
	}()

	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

func buildExporter(cfg *config.Config, logger *logrus.Logger) telemetry.Exporter {
	if !cfg.Reporting.Enabled {
		return telemetry.NewNoopExporter()
	}
	exporter, err := telemetry.NewKafkaExporter(map[string]interface{}{
		"host":  cfg.Reporting.Host,
		"port":  cfg.Reporting.Port,
		"topic": cfg.Reporting.Topic,
	})
	if err != nil {
		logger.WithError(err).Warn("security event reporting disabled")
		return telemetry.NewNoopExporter()
	}
	return exporter
}

func buildTracker(cfg *config.Config, logger *logrus.Logger) *telemetry.ViolationTracker {
	if cfg.Redis.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return telemetry.NewViolationTracker(
		client,
		logger,
		cfg.RateLimit.ViolationThreshold,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		nil,
	)
}
