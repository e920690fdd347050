// Package auth implements the credential primitives for the server:
// a stateless HS256 access-token codec, a bcrypt password hasher, and an
// explicit authentication principal derived from the user record.
package auth

import (
	"errors"
	"time"

	"github.com/avolkovs/healthtrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered JWT claims plus an optional bag of extra
// claims embedded at issue time.
type Claims struct {
	jwt.RegisteredClaims
	Extra map[string]any `json:"extra,omitempty"`
}

// TokenCodec issues and verifies signed, short-lived access tokens. The
// signing key and TTL are fixed at construction; a codec is safe for
// concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec constructs a codec for the given HMAC secret and access
// token lifetime.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl}
}

// TTL returns the configured access token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed token for subject with issued-at = now and
// expiry = now + TTL. The extra map, when non-nil, is embedded verbatim
// under the "extra" claim.
func (c *TokenCodec) Issue(subject string, extra map[string]any) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Extra: extra,
	})

	return token.SignedString(c.secret)
}

// Verify parses tokenString, checks the signature and expiry, and returns
// the claims. Failures map to the sentinel errors in internal/common:
// ErrAccessTokenExpired, ErrInvalidSignature, or ErrAccessTokenMalformed.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrAccessTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrInvalidSignature
		default:
			return nil, common.ErrAccessTokenMalformed
		}
	}

	if !token.Valid {
		return nil, common.ErrAccessTokenMalformed
	}

	return claims, nil
}

// SubjectOf extracts the subject without verifying the signature or expiry.
// Callers must not treat the result as authentication.
func (c *TokenCodec) SubjectOf(tokenString string) (string, error) {
	claims := &Claims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return "", common.ErrAccessTokenMalformed
	}

	return claims.Subject, nil
}
