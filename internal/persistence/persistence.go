// Package persistence 根据配置选择文档存储后端。
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/store"
)

// Open 返回配置指定的后端。redisClient 仅在 redis 驱动下使用，可为 nil。
func Open(ctx context.Context, cfg config.Config, redisClient *redis.Client, logger *slog.Logger) (store.Backend, error) {
	driver := cfg.Persistence.Driver
	log := logger.With(slog.String("driver", driver))

	switch driver {
	case config.DriverMemory:
		log.Warn("using in-memory persistence, the document is lost on exit")
		return store.NewMemoryBackend(), nil
	case config.DriverFile:
		b, err := store.NewFileBackend(cfg.Persistence.FilePath)
		if err != nil {
			return nil, err
		}
		log.Info("using file persistence", slog.String("dir", cfg.Persistence.FilePath))
		return b, nil
	case config.DriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis persistence requires a redis client")
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Info("using redis persistence", slog.String("prefix", cfg.Persistence.RedisPrefix))
		return store.NewRedisBackend(redisClient, cfg.Persistence.RedisPrefix), nil
	case config.DriverPostgres:
		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		log.Info("using postgres persistence", slog.String("host", cfg.Database.Host))
		return database.NewBackend(db), nil
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Persistence.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		db, err := database.InitSQLite(cfg.Persistence.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		log.Info("using sqlite persistence", slog.String("path", cfg.Persistence.SQLitePath))
		return database.NewBackend(db), nil
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", driver)
	}
}

// NewRedisClient 按配置创建 Redis 客户端。
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
