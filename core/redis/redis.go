package redis

import (
	"context"
	"fmt"

	"review-scheduler/core/config"
	"review-scheduler/core/constants"
	"review-scheduler/core/logger"

	goredis "github.com/redis/go-redis/v9"
)

var client *goredis.Client

// Init connects the shared redis client used for scheduling locks.
func Init(cfg config.RedisConfig) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	client = c
	logger.Info("Redis initialized successfully", "addr", cfg.Addr, "db", cfg.DB)
	return c, nil
}

func Get() *goredis.Client {
	return client
}
