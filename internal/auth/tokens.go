// Package auth implements account handling for the self-hosted backends:
// bcrypt password hashes and HS256 access tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"expensetracker/internal/core"
)

const issuer = "expensetracker"

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed access tokens. Revoked token ids are
// remembered until the token would have expired anyway.
type Tokens struct {
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
	revoked *cache.Cache
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: cache.New(ttl, 10*time.Minute),
	}
}

// Issue signs a token for u.
func (t *Tokens) Issue(u core.User) (string, error) {
	now := t.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user a token was issued for.
// Any invalid, expired or revoked token yields core.ErrNotAuthenticated.
func (t *Tokens) Verify(token string) (core.User, error) {
	c, err := t.parse(token)
	if err != nil {
		return core.User{}, err
	}
	if _, revoked := t.revoked.Get(c.ID); revoked {
		return core.User{}, core.ErrNotAuthenticated
	}
	return core.User{ID: c.Subject, Email: c.Email}, nil
}

// Revoke invalidates token for the rest of its lifetime.
func (t *Tokens) Revoke(token string) error {
	c, err := t.parse(token)
	if err != nil {
		return err
	}
	remaining := c.ExpiresAt.Time.Sub(t.now())
	if remaining <= 0 {
		return nil
	}
	t.revoked.Set(c.ID, struct{}{}, remaining)
	return nil
}

func (t *Tokens) parse(token string) (*claims, error) {
	if token == "" {
		return nil, core.ErrNotAuthenticated
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, errors.Join(core.ErrNotAuthenticated, err)
	}
	return &c, nil
}
