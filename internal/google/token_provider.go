package google

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider supplies OAuth token sources for Google API clients.
// This abstraction keeps the Calendar client testable without a real
// credential on disk.
type TokenProvider interface {
	// TokenSource returns a token source backed by a valid credential.
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)

	// HasToken checks whether a persisted credential exists.
	HasToken() bool
}

var _ TokenProvider = (*Authenticator)(nil)
