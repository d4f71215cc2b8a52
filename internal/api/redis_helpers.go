package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRateCounter 是固定窗口限流需要的 redis 命令子集，*redis.Client 满足该接口。
type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// incrWithTTL 递增计数，窗口内第一次递增时设置过期时间。
func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if count == 1 {
		if err := client.Expire(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count, nil
}

// allowInWindow 报告本次请求是否仍在窗口配额内。
func allowInWindow(ctx context.Context, client redisRateCounter, key string, limit int, window time.Duration) (bool, int64, error) {
	count, err := incrWithTTL(ctx, client, key, window)
	if err != nil {
		return false, count, err
	}
	return count <= int64(limit), count, nil
}
