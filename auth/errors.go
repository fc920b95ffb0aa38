package auth

import "errors"

// Sentinel errors for credential attachment.
var (
	// ErrNilTokenSource indicates Bearer was constructed without a source.
	ErrNilTokenSource = errors.New("auth: token source is nil")

	// ErrEmptyToken indicates a token source produced an empty credential.
	ErrEmptyToken = errors.New("auth: token source returned an empty token")

	// ErrEmptyAPIKey indicates APIKey was constructed without a credential.
	ErrEmptyAPIKey = errors.New("auth: api key is empty")
)
