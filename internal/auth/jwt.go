// Package auth provides session-token issuing/validation, password hashing,
// and the middleware that gates every contact route behind a bearer token.
//
// Tokens are self-describing JWTs: the user id travels in the "sub" claim and
// the HMAC signature makes the whole thing tamper-evident, so resolution needs
// no server-side session table, just the signing secret and the clock.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window for issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// TokenService issues and validates the bearer tokens returned by /login.
// It holds the HMAC secret used both to sign and to verify.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A ttl of 0 selects DefaultTokenTTL. The secret should be at least
// 32 bytes of random data in production.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims embeds jwt.RegisteredClaims; the user id lives in Subject ("sub").
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a token for the given userID.
func (s *TokenService) Issue(userID string) (string, error) {
	return s.IssueWithDuration(userID, s.ttl)
}

// IssueWithDuration creates a token with a custom expiry. Used by tests to
// mint already-expired tokens.
func (s *TokenService) IssueWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "contactbook",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Resolve parses and verifies a token string and returns the userID it was
// issued for. Fails for a tampered signature, an expired token, a foreign
// issuer, or a non-HMAC algorithm (jwt.WithValidMethods blocks algorithm
// confusion attacks).
func (s *TokenService) Resolve(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("contactbook"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	userID := c.Subject
	if userID == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return userID, nil
}
