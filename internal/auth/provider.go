package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"booking-warden/internal/logger"
	"booking-warden/internal/models"
)

// DefaultTokenTTL applies to tokens whose expiry cannot be read.
const DefaultTokenTTL = 30 * time.Minute

type Authenticator interface {
	Login(ctx context.Context) (*models.Session, error)
}

type Cache interface {
	GetToken(ctx context.Context) (*TokenCache, error)
	SetToken(ctx context.Context, token string, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// TokenProvider hands out a Heynabo session token, logging in only when
// neither the process nor the shared cache holds a usable one. Cache errors
// are logged and bypassed.
type TokenProvider struct {
	auth   Authenticator
	cache  Cache
	logger *logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *TokenCache
}

// NewTokenProvider builds a provider; cache may be nil.
func NewTokenProvider(auth Authenticator, cache Cache, log *logger.Logger) *TokenProvider {
	return &TokenProvider{auth: auth, cache: cache, logger: log, now: time.Now}
}

func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.current.IsValid(now) {
		return p.current.Token, nil
	}

	if p.cache != nil {
		cached, err := p.cache.GetToken(ctx)
		if err != nil {
			p.logger.Warn("CACHE", fmt.Sprintf("Token cache read failed, logging in: %v", err))
		} else if cached != nil {
			p.logger.Debug("CACHE", "Using cached session token")
			p.current = cached
			return cached.Token, nil
		}
	}

	session, err := p.auth.Login(ctx)
	if err != nil {
		return "", err
	}

	ttl := CacheTTL(session.Token, now, DefaultTokenTTL)
	p.current = &TokenCache{Token: session.Token, ExpiresAt: now.Add(ttl)}
	if p.cache != nil && ttl > 0 {
		if err := p.cache.SetToken(ctx, session.Token, ttl); err != nil {
			p.logger.Warn("CACHE", fmt.Sprintf("Token cache write failed: %v", err))
		}
	}
	return session.Token, nil
}

// Forget drops the current token everywhere it is held, so the next Token
// call logs in again. Used when the API rejects the token before its exp.
func (p *TokenProvider) Forget(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = nil
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx); err != nil {
		p.logger.Warn("CACHE", fmt.Sprintf("Token cache invalidation failed: %v", err))
		return
	}
	p.logger.Info("CACHE", "Dropped rejected session token")
}
