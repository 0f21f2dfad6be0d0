// Package auth handles the operator's bearer token.
//
// The console does not verify tokens (it does not hold the signing key); it
// only reads the claims to show who is signed in and to refuse an expired
// token before the first request. The development backend issues and
// verifies HS256 tokens with a shared secret.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no API token configured")
	ErrTokenExpired = errors.New("API token has expired")
	ErrInvalidToken = errors.New("invalid API token")
	// ErrNotJWT is returned by Inspect for opaque tokens. Such tokens are
	// still usable; they just carry no readable claims.
	ErrNotJWT = errors.New("token is not a JWT")
)

// Claims are the claims carried by a staff token.
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Operator returns the best display name for the token holder.
func (c *Claims) Operator() string {
	if c == nil {
		return ""
	}
	if c.Name != "" {
		return c.Name
	}
	return c.Subject
}

// Issue signs a token for subject valid for ttl from now.
func Issue(secret []byte, subject, name, role string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the HS256 signature and expiry of token.
func Verify(token string, secret []byte) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Inspect reads the claims of token without verifying its signature. It
// returns ErrTokenExpired (with the claims) when exp is before now and
// ErrNotJWT for opaque tokens.
func Inspect(token string, now time.Time) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrNotJWT
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
