package redis

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joy095/bookmarathon/logger"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedisClient returns a singleton Redis client. The client is only used
// as the rate limiter store; booking state is never cached here.
func GetRedisClient() (*redis.Client, error) {
	redisOnce.Do(func() {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return
		}

		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.ErrorLogger.Errorf("Invalid REDIS_URL: %v", err)
			return
		}

		client := redis.NewClient(opt)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := client.Ping(ctx).Result(); err != nil {
			logger.ErrorLogger.Errorf("Failed to connect to Redis: %v", err)
			_ = client.Close()
			return
		}

		logger.InfoLogger.Info("Connected to Redis")
		redisClient = client
	})

	if redisClient == nil {
		return nil, fmt.Errorf("redis client not initialized; check REDIS_URL and connectivity")
	}
	return redisClient, nil
}

// CloseRedis closes the Redis connection.
func CloseRedis() {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.WarnLogger.Warnf("Error closing Redis connection: %v", err)
		}
		logger.InfoLogger.Info("Redis connection closed")
	}
}
