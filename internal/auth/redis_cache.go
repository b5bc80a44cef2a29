package auth

import (
	"context"
	"fmt"
	"time"

	"booking-warden/internal/logger"

	"github.com/go-redis/redis/v8"
)

// InitializeTokenCache sets up Redis for token caching and tests the connection
func InitializeTokenCache(redisAddr string, log *logger.Logger) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		DB:       0,
		PoolSize: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		log.Error("CACHE", fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
		redisClient.Close()
		return nil, err
	}

	log.Info("CACHE", fmt.Sprintf("Successfully connected to Redis at %s for token caching", redisAddr))
	return redisClient, nil
}
