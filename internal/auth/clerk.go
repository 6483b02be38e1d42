package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ClerkVerifier validates Clerk-issued JWTs against the issuer's published
// JWKS. Keys are fetched once up front and refreshed in the background for
// the lifetime of the given context.
type ClerkVerifier struct {
	issuer string
	jwks   keyfunc.Keyfunc
}

func NewClerkVerifier(ctx context.Context, issuerURL, jwksURL string) (*ClerkVerifier, error) {
	if issuerURL == "" {
		return nil, fmt.Errorf("auth issuer url not configured")
	}
	if jwksURL == "" {
		jwksURL = strings.TrimRight(issuerURL, "/") + "/.well-known/jwks.json"
	}
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("load jwks from %s: %w", jwksURL, err)
	}
	return &ClerkVerifier{issuer: issuerURL, jwks: jwks}, nil
}

func (v *ClerkVerifier) Verify(_ context.Context, tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	subject, _ := mapClaims["sub"].(string)
	if subject == "" {
		return Claims{}, ErrInvalidToken
	}
	email, _ := mapClaims["email"].(string)
	username, _ := mapClaims["username"].(string)

	return Claims{Subject: subject, Email: email, Username: username}, nil
}
