package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryFromJWT reads the exp claim of a session token without verifying it.
// Heynabo signs its tokens; the warden only needs to know when to log in again.
func ExpiryFromJWT(tokenString string) (time.Time, error) {
	if tokenString == "" {
		return time.Time{}, errors.New("empty token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, errors.New("token carries no exp claim")
	}
	return exp.Time, nil
}

// CacheTTL is how long a token may be reused: until its exp minus the refresh
// buffer, or fallback when the token is opaque. Zero means do not cache.
func CacheTTL(tokenString string, now time.Time, fallback time.Duration) time.Duration {
	exp, err := ExpiryFromJWT(tokenString)
	if err != nil {
		return fallback
	}
	ttl := exp.Sub(now) - TokenExpiryBuffer*time.Second
	if ttl <= 0 {
		return 0
	}
	return ttl
}
