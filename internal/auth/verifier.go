package auth

import (
	"context"
	"errors"
)

// Claims is the subset of token claims the service consumes. Subject is the
// identity provider's stable user id; email and username ride along when the
// JWT template includes them.
type Claims struct {
	Subject  string
	Email    string
	Username string
}

// ErrInvalidToken covers every verification failure: bad signature, wrong
// issuer, expiry, or a missing subject. Callers translate it to 401.
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier validates a bearer token and yields its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
