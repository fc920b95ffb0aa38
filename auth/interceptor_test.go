package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantHeader string
	}{
		{"custom header", "X-Service-Key", "X-Service-Key"},
		{"default header", "", "X-API-Key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interceptor := APIKey(tt.header, "secret-key")

			h := http.Header{}
			if err := interceptor(context.Background(), h); err != nil {
				t.Fatalf("interceptor error = %v", err)
			}
			if got := h.Get(tt.wantHeader); got != "secret-key" {
				t.Errorf("%s = %q, want secret-key", tt.wantHeader, got)
			}
		})
	}
}

func TestAPIKey_EmptyKey(t *testing.T) {
	interceptor := APIKey("X-API-Key", "")

	if err := interceptor(context.Background(), http.Header{}); !errors.Is(err, ErrEmptyAPIKey) {
		t.Errorf("interceptor error = %v, want ErrEmptyAPIKey", err)
	}
}

func TestBearer_AttachesToken(t *testing.T) {
	interceptor := Bearer(StaticTokenSource("tok"))

	h := http.Header{}
	if err := interceptor(context.Background(), h); err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if got := h.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", got)
	}
}

func TestBearer_NilSource(t *testing.T) {
	interceptor := Bearer(nil)

	if err := interceptor(context.Background(), http.Header{}); !errors.Is(err, ErrNilTokenSource) {
		t.Errorf("interceptor error = %v, want ErrNilTokenSource", err)
	}
}

func TestBearer_EmptyToken(t *testing.T) {
	interceptor := Bearer(StaticTokenSource(""))

	if err := interceptor(context.Background(), http.Header{}); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("interceptor error = %v, want ErrEmptyToken", err)
	}
}

func TestBearer_OpaqueTokenFetchedOnce(t *testing.T) {
	calls := 0
	src := TokenSourceFunc(func(ctx context.Context) (string, error) {
		calls++
		return "opaque-token", nil
	})

	interceptor := Bearer(src)
	for i := 0; i < 5; i++ {
		if err := interceptor(context.Background(), http.Header{}); err != nil {
			t.Fatalf("interceptor error = %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("source calls = %d, want opaque token cached after one fetch", calls)
	}
}

func TestBearer_RefreshesExpiringJWT(t *testing.T) {
	// First token expires inside the refresh margin; the second is long-lived.
	tokens := []string{
		signedToken(t, time.Now().Add(5*time.Second)),
		signedToken(t, time.Now().Add(time.Hour)),
	}

	calls := 0
	src := TokenSourceFunc(func(ctx context.Context) (string, error) {
		token := tokens[calls]
		calls++
		return token, nil
	})

	interceptor := Bearer(src, WithRefreshMargin(30*time.Second))

	h := http.Header{}
	if err := interceptor(context.Background(), h); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	if got := h.Get("Authorization"); got != "Bearer "+tokens[0] {
		t.Errorf("first Authorization = %q, want first token", got)
	}

	// Second request sees the cached token within its margin and refetches.
	if err := interceptor(context.Background(), h); err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if got := h.Get("Authorization"); got != "Bearer "+tokens[1] {
		t.Errorf("second Authorization = %q, want refreshed token", got)
	}
	if calls != 2 {
		t.Errorf("source calls = %d, want 2", calls)
	}

	// Third request reuses the long-lived token.
	if err := interceptor(context.Background(), h); err != nil {
		t.Fatalf("third call error = %v", err)
	}
	if calls != 2 {
		t.Errorf("source calls = %d, want long-lived token cached", calls)
	}
}

func TestBearer_FreshJWTCached(t *testing.T) {
	calls := 0
	src := TokenSourceFunc(func(ctx context.Context) (string, error) {
		calls++
		return signedToken(t, time.Now().Add(time.Hour)), nil
	})

	interceptor := Bearer(src)
	for i := 0; i < 3; i++ {
		if err := interceptor(context.Background(), http.Header{}); err != nil {
			t.Fatalf("interceptor error = %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("source calls = %d, want 1", calls)
	}
}

func TestBearer_SourceError(t *testing.T) {
	boom := errors.New("idp down")
	interceptor := Bearer(TokenSourceFunc(func(ctx context.Context) (string, error) {
		return "", boom
	}))

	if err := interceptor(context.Background(), http.Header{}); !errors.Is(err, boom) {
		t.Errorf("interceptor error = %v, want boom", err)
	}
}
