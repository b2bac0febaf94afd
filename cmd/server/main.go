package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"shiritori/internal/app"
	"shiritori/internal/config"
	"shiritori/internal/dictionary"
	httpTransport "shiritori/internal/transport/http"
)

//go:embed web/*
var webFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting shiritori server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"dictionary", cfg.Dictionary.Backend,
	)

	ctx := context.Background()

	source, closeSource, err := newSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up dictionary", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	dict, err := dictionary.New(&dictionary.Config{
		Source:  source,
		Timeout: cfg.Dictionary.Timeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create dictionary", "error", err)
		os.Exit(1)
	}

	hub, err := app.NewGameHub(&app.HubConfig{
		Rules:        cfg.Rules(),
		Lookup:       dict,
		Logger:       logger,
		TickInterval: cfg.Game.TickInterval,
		StaleTimeout: cfg.Game.StaleTimeout,
	})
	if err != nil {
		logger.Error("failed to create game hub", "error", err)
		os.Exit(1)
	}
	defer hub.Close()

	server := httpTransport.NewServer(cfg, hub, logger, webFS)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// newSource builds the configured dictionary backend, behind the Redis
// verdict cache when REDIS_ADDR is set. The returned func releases it.
func newSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (dictionary.Source, func(), error) {
	var (
		source  dictionary.Source
		closers []func() error
	)

	switch cfg.Dictionary.Backend {
	case config.BackendAPI:
		api, err := dictionary.NewAPISource(&dictionary.APIConfig{
			BaseURL: cfg.Dictionary.BaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		source = api
	case config.BackendWordList:
		words, err := dictionary.OpenWordList(ctx, cfg.Dictionary.WordListDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open word list: %w", err)
		}
		closers = append(closers, words.Close)

		if cfg.Dictionary.WordListPath != "" {
			n, err := words.LoadFile(ctx, cfg.Dictionary.WordListPath)
			if err != nil {
				words.Close()
				return nil, nil, fmt.Errorf("failed to load word list: %w", err)
			}
			logger.Info("word list loaded", "path", cfg.Dictionary.WordListPath, "added", n)
		}
		source = words
	default:
		return nil, nil, fmt.Errorf("unknown dictionary backend %q", cfg.Dictionary.Backend)
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, client.Close)

		cached, err := dictionary.NewCachedSource(&dictionary.CacheConfig{
			Source:      source,
			RedisClient: client,
			TTL:         cfg.Redis.CacheTTL,
			Logger:      logger,
		})
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, fmt.Errorf("failed to enable verdict cache: %w", err)
		}
		logger.Info("dictionary cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		source = cached
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("failed to close dictionary resource", "error", err)
			}
		}
	}
	return source, closeAll, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
