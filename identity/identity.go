// Package identity adapts the external identity provider: validating
// incoming bearer tokens and querying the user directory. Token
// issuance itself is delegated entirely to the provider.
package identity

import "context"

// Claims is the authenticated identity attached to a request.
type Claims struct {
	Subject string
	Email   string
}

// TokenVerifier validates a bearer token and returns its claims.
// The API service receives an implementation at startup so tests can
// substitute fakes.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Directory lists users known to the identity provider.
type Directory interface {
	ListUserEmails(ctx context.Context) ([]string, error)
}
