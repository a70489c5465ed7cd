// Package token issues and verifies the signed bearer tokens used for
// authentication. Tokens are self-contained: validity is determined solely by
// the HMAC signature and the expiry claim, with no server-side session state
// and no revocation list.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akovalyov/deeptrace/internal/apperr"
)

// Manager signs and verifies HS256 JWTs carrying a subject identifier.
type Manager struct {
	secret []byte
}

// NewManager constructs a Manager signing with the given shared secret.
func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	return &Manager{secret: []byte(secret)}, nil
}

// Issue creates a signed token for subjectID expiring after ttl.
func (m *Manager) Issue(subjectID string, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", errors.New("token: empty subject")
	}
	if ttl <= 0 {
		return "", errors.New("token: non-positive ttl")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns the subject identifier. It returns
// apperr.ErrInvalidToken when the signature does not match, the payload
// cannot be parsed, or the token has expired. A token exactly at its expiry
// instant is treated as expired.
func (m *Manager) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", apperr.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", apperr.ErrInvalidToken
	}
	// jwt's own check allows the exact expiry instant; we do not.
	if claims.ExpiresAt == nil || !time.Now().Before(claims.ExpiresAt.Time) {
		return "", apperr.ErrInvalidToken
	}
	return claims.Subject, nil
}
