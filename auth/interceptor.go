package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRefreshMargin is how long before a JWT's exp claim a cached token
// is treated as expired and refetched.
const DefaultRefreshMargin = 30 * time.Second

// HeaderInterceptor mutates outbound request headers before send.
type HeaderInterceptor func(ctx context.Context, h http.Header) error

// APIKey returns an interceptor that sets key under the given header on
// every request. The header defaults to "X-API-Key" when empty.
func APIKey(header, key string) HeaderInterceptor {
	if header == "" {
		header = "X-API-Key"
	}
	return func(_ context.Context, h http.Header) error {
		if key == "" {
			return ErrEmptyAPIKey
		}
		h.Set(header, key)
		return nil
	}
}

// BearerOption configures the Bearer interceptor.
type BearerOption func(*bearerState)

// WithRefreshMargin overrides how long before expiry a token is refetched.
func WithRefreshMargin(margin time.Duration) BearerOption {
	return func(b *bearerState) {
		if margin > 0 {
			b.margin = margin
		}
	}
}

type bearerState struct {
	source TokenSource
	margin time.Duration

	mu      sync.Mutex
	token   string
	expires time.Time // zero when the token carries no exp claim
}

// Bearer returns an interceptor that attaches "Authorization: Bearer <token>"
// from the source. Tokens are cached between requests. When the token parses
// as a JWT with an exp claim, a fresh one is fetched once the claim is within
// the refresh margin; opaque tokens are fetched once and reused.
func Bearer(source TokenSource, opts ...BearerOption) HeaderInterceptor {
	b := &bearerState{source: source, margin: DefaultRefreshMargin}
	for _, opt := range opts {
		opt(b)
	}

	return func(ctx context.Context, h http.Header) error {
		token, err := b.current(ctx)
		if err != nil {
			return err
		}
		h.Set("Authorization", "Bearer "+token)
		return nil
	}
}

func (b *bearerState) current(ctx context.Context) (string, error) {
	if b.source == nil {
		return "", ErrNilTokenSource
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.token != "" && !b.expiring() {
		return b.token, nil
	}

	token, err := b.source.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrEmptyToken
	}

	b.token = token
	b.expires = tokenExpiry(token)
	return token, nil
}

func (b *bearerState) expiring() bool {
	if b.expires.IsZero() {
		return false
	}
	return time.Until(b.expires) <= b.margin
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// server still enforces validity, this only schedules proactive refresh.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
