package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumeBuilder/internal/api"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/events"
	"resumeBuilder/internal/logging"
	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	logger := logging.New(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *cfg, logger); err != nil {
		log.Fatalf("api: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient = persistence.NewRedisClient(cfg.Redis)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("redis connection ready", slog.String("addr", cfg.Redis.Addr()))
	}

	var bus events.Bus = events.NewHub()
	if redisClient != nil {
		bus = events.NewRedisBus(redisClient, cfg.Redis.Channel)
	}

	backend, err := persistence.Open(ctx, cfg, redisClient, logger)
	if err != nil {
		return fmt.Errorf("open persistence: %w", err)
	}

	docs, err := store.Open(ctx, backend,
		store.WithKey(cfg.Document.Key),
		store.WithLogger(logger),
		store.WithPublisher(bus),
		store.WithObserver(metrics.ObserveStoreMutation),
	)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	logger.Info("document store ready", slog.String("key", docs.Key()))

	sessions := editor.NewRegistry(docs, logger, editor.WithDelay(cfg.Editor.Debounce()))
	if idle := cfg.Editor.IdleTimeout(); idle > 0 {
		go expireIdleSessions(ctx, sessions, idle)
	}

	deps := api.Dependencies{
		Store:          docs,
		Sessions:       sessions,
		Events:         bus,
		Logger:         logger,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}

	var images render.ImageSource
	if cfg.MinIO.Enabled {
		storageClient, err := storage.NewClient(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("init storage client: %w", err)
		}
		logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))
		deps.Assets = storageClient
		images = storageClient
	}
	if cfg.Clamd.Addr != "" {
		deps.Scanner = api.ClamdScanner{Addr: cfg.Clamd.Addr}
	}

	renderer, err := render.New(images, logger)
	if err != nil {
		return err
	}
	deps.Renderer = renderer

	if cfg.Queue.Enabled {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
		deps.Jobs = asynqClient
		deps.RateLimiter = redisClient
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down api")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.Any("error", err))
	}
	// 关闭前把所有未保存的编辑缓冲落盘。
	if err := sessions.CloseAll(shutdownCtx); err != nil {
		logger.Error("flush editor sessions failed", slog.Any("error", err))
	}
	return nil
}

// expireIdleSessions 定期关闭长时间未更新的编辑会话，直到 ctx 结束。
func expireIdleSessions(ctx context.Context, sessions *editor.Registry, idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if sessions.CloseIdle(ctx, idle) > 0 {
				metrics.SetEditorSessions(sessions.Len())
			}
		}
	}
}
