package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// SessionTokenKey is the key used to store the Heynabo session token in Redis
	SessionTokenKey = "bookingwarden:heynabo_session_token"
	// TokenExpiryBuffer is the buffer time before actual token expiry to refresh it (in seconds)
	TokenExpiryBuffer = 60
)

// TokenCache represents a cached token with its expiry time
type TokenCache struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsValid checks if the token is still valid with a buffer time before expiry
func (tc *TokenCache) IsValid(now time.Time) bool {
	if tc == nil || tc.Token == "" {
		return false
	}
	return now.Add(TokenExpiryBuffer * time.Second).Before(tc.ExpiresAt)
}

// RedisTokenCache implements token caching using Redis
type RedisTokenCache struct {
	Client *redis.Client
	Key    string
}

func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{
		Client: client,
		Key:    SessionTokenKey,
	}
}

// GetToken retrieves a token from the cache; a miss or an expired entry
// returns nil without error.
func (c *RedisTokenCache) GetToken(ctx context.Context) (*TokenCache, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	tokenJSON, err := c.Client.Get(ctx, c.Key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get token from Redis: %w", err)
	}

	var tokenCache TokenCache
	if err := json.Unmarshal([]byte(tokenJSON), &tokenCache); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token cache: %w", err)
	}

	if !tokenCache.IsValid(time.Now()) {
		return nil, nil
	}

	return &tokenCache, nil
}

// SetToken stores a token that expires after ttl
func (c *RedisTokenCache) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	if c.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	tokenCache := &TokenCache{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}

	tokenJSON, err := json.Marshal(tokenCache)
	if err != nil {
		return fmt.Errorf("failed to marshal token cache: %w", err)
	}

	// Redis TTL gets a small buffer for clock skew
	if err := c.Client.Set(ctx, c.Key, tokenJSON, ttl+TokenExpiryBuffer*time.Second).Err(); err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}

	return nil
}

// Invalidate drops the cached token, e.g. after the API rejected it.
func (c *RedisTokenCache) Invalidate(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return c.Client.Del(ctx, c.Key).Err()
}
