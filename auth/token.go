package auth

import "context"

// TokenSource supplies a bearer credential. Implementations may fetch from
// an identity provider, read a rotated file, or return a fixed value.
type TokenSource interface {
	// Token returns a credential valid at call time.
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

var _ TokenSource = TokenSourceFunc(nil)

// StaticTokenSource returns a TokenSource that always yields token.
func StaticTokenSource(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) {
		return token, nil
	})
}
