package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
)

// NewClient connects to the redis named by REDIS_ADDR and verifies it with a
// ping. REDIS_PASSWORD is optional. Callers treat redis as optional
// infrastructure: a missing REDIS_ADDR is an error they may choose to ignore.
func NewClient(log *logger.Logger) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	clientLog := log.With("service", "RedisClient")

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	clientLog.Info("Connected to redis", "addr", addr)
	return rdb, nil
}
