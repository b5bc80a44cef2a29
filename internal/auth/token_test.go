package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"booking-warden/internal/logger"
	"booking-warden/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func signed(t *testing.T, claims jwt.MapClaims) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("heynabo"))
	require.NoError(t, err)
	return tok
}

func TestExpiryFromJWT(t *testing.T) {
	exp := now.Add(2 * time.Hour)
	got, err := ExpiryFromJWT(signed(t, jwt.MapClaims{"exp": exp.Unix()}))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))

	_, err = ExpiryFromJWT(signed(t, jwt.MapClaims{"sub": "5"}))
	assert.Error(t, err)

	_, err = ExpiryFromJWT("opaque-session-id")
	assert.Error(t, err)
}

func TestCacheTTL(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	assert.Equal(t, time.Hour-TokenExpiryBuffer*time.Second, CacheTTL(tok, now, DefaultTokenTTL))

	almostGone := signed(t, jwt.MapClaims{"exp": now.Add(30 * time.Second).Unix()})
	assert.Zero(t, CacheTTL(almostGone, now, DefaultTokenTTL))

	assert.Equal(t, DefaultTokenTTL, CacheTTL("opaque", now, DefaultTokenTTL))
}

func TestTokenCacheIsValid(t *testing.T) {
	var missing *TokenCache
	assert.False(t, missing.IsValid(now))
	assert.False(t, (&TokenCache{Token: "t", ExpiresAt: now.Add(30 * time.Second)}).IsValid(now))
	assert.True(t, (&TokenCache{Token: "t", ExpiresAt: now.Add(time.Hour)}).IsValid(now))
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context) (*models.Session, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetToken(ctx context.Context) (*TokenCache, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TokenCache), args.Error(1)
}

func (m *MockCache) SetToken(ctx context.Context, token string, ttl time.Duration) error {
	return m.Called(token, ttl).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context) error {
	return m.Called().Error(0)
}

func provider(a Authenticator, c Cache) *TokenProvider {
	p := NewTokenProvider(a, c, logger.NewWriterLogger(io.Discard))
	p.now = func() time.Time { return now }
	return p
}

func TestProviderLogsInOnceWithoutCache(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("Login").Return(&models.Session{Token: "opaque"}, nil).Once()
	p := provider(a, nil)

	for i := 0; i < 3; i++ {
		tok, err := p.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "opaque", tok)
	}
	a.AssertExpectations(t)
}

func TestProviderPrefersSharedCache(t *testing.T) {
	a := new(MockAuthenticator)
	c := new(MockCache)
	c.On("GetToken").Return(&TokenCache{Token: "shared", ExpiresAt: now.Add(time.Hour)}, nil)
	p := provider(a, c)

	tok, err := p.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "shared", tok)
	a.AssertNotCalled(t, "Login")
}

func TestProviderStoresFreshLoginWithJWTLifetime(t *testing.T) {
	a := new(MockAuthenticator)
	c := new(MockCache)
	tok := signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	c.On("GetToken").Return(nil, nil)
	a.On("Login").Return(&models.Session{Token: tok}, nil)
	c.On("SetToken", tok, time.Hour-TokenExpiryBuffer*time.Second).Return(nil)

	got, err := provider(a, c).Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, tok, got)
	c.AssertExpectations(t)
}

func TestProviderSurvivesCacheOutage(t *testing.T) {
	a := new(MockAuthenticator)
	c := new(MockCache)
	c.On("GetToken").Return(nil, errors.New("dial tcp: connection refused"))
	c.On("SetToken", "opaque", DefaultTokenTTL).Return(errors.New("dial tcp: connection refused"))
	a.On("Login").Return(&models.Session{Token: "opaque"}, nil)

	tok, err := provider(a, c).Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "opaque", tok)
}

func TestProviderPropagatesLoginFailure(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("Login").Return(nil, errors.New("401 Unauthorized"))

	_, err := provider(a, nil).Token(context.Background())
	assert.Error(t, err)
}

func TestForgetClearsMemoAndCache(t *testing.T) {
	a := new(MockAuthenticator)
	c := new(MockCache)
	c.On("GetToken").Return(&TokenCache{Token: "revoked", ExpiresAt: now.Add(time.Hour)}, nil).Once()
	c.On("Invalidate").Return(nil).Once()
	c.On("GetToken").Return(nil, nil).Once()
	a.On("Login").Return(&models.Session{Token: "opaque"}, nil).Once()
	c.On("SetToken", "opaque", DefaultTokenTTL).Return(nil).Once()
	p := provider(a, c)
	ctx := context.Background()

	tok, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "revoked", tok)

	p.Forget(ctx)

	tok, err = p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque", tok)
	a.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestForgetWithoutCache(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("Login").Return(&models.Session{Token: "opaque"}, nil).Twice()
	p := provider(a, nil)
	ctx := context.Background()

	_, err := p.Token(ctx)
	require.NoError(t, err)
	p.Forget(ctx)
	_, err = p.Token(ctx)
	require.NoError(t, err)

	a.AssertExpectations(t)
}
