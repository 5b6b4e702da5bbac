package client

import (
	"context"
	"salonbook/pkg/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetRedis connects the slot cache. A failed ping is logged but not fatal:
// the availability service computes uncached while Redis is down.
func (c *Client) SetRedis(log *logger.Logger, addr, password string, db int, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis ping failed, continuing without a warm cache", "error", err, "addr", addr)
	} else {
		log.Info("Successfully connected to Redis", "addr", addr)
	}
	c.Redis = rdb
}
