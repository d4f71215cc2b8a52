package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/logging"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/store"
)

// openStore 按环境配置打开文档存储。返回的 closer 释放 redis 连接。
func openStore(ctx context.Context) (*store.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.Log)

	var redisClient *redis.Client
	closer := func() {}
	if cfg.Persistence.Driver == config.DriverRedis {
		redisClient = persistence.NewRedisClient(cfg.Redis)
		closer = func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("close redis client failed", slog.Any("error", err))
			}
		}
	}

	backend, err := persistence.Open(ctx, *cfg, redisClient, logger)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("open persistence: %w", err)
	}
	s, err := store.Open(ctx, backend, store.WithKey(cfg.Document.Key), store.WithLogger(logger))
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("open document store: %w", err)
	}
	return s, closer, nil
}

// withStore 为子命令打开存储并在结束后释放。
func withStore(fn func(ctx context.Context, s *store.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		s, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()
		return fn(ctx, s)
	}
}
