package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/core"
)

// MinPasswordLength matches the hosted backend's default policy.
const MinPasswordLength = 6

var ErrWeakPassword = fmt.Errorf("password should be at least %d characters", MinPasswordLength)

// UserStore persists accounts for the self-hosted backends.
type UserStore interface {
	// CreateUser fails with core.ErrEmailAlreadyInUse for a taken email.
	CreateUser(ctx context.Context, email, passwordHash string) (core.User, error)
	// FindUserByEmail fails with core.ErrInvalidCredentials when no user matches.
	FindUserByEmail(ctx context.Context, email string) (core.User, string, error)
}

// Local authenticates against a UserStore and hands out signed tokens.
type Local struct {
	users  UserStore
	tokens *Tokens
}

func NewLocal(users UserStore, tokens *Tokens) *Local {
	return &Local{users: users, tokens: tokens}
}

func (a *Local) SignUp(ctx context.Context, email, password string) (core.Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return core.Session{}, core.ErrEmptyEmail
	}
	if password == "" {
		return core.Session{}, core.ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return core.Session{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.Session{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := a.users.CreateUser(ctx, email, string(hash))
	if err != nil {
		return core.Session{}, err
	}
	return a.session(u)
}

func (a *Local) SignIn(ctx context.Context, email, password string) (core.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return core.Session{}, core.ErrInvalidCredentials
	}
	u, hash, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		return core.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return core.Session{}, core.ErrInvalidCredentials
		}
		return core.Session{}, fmt.Errorf("compare password: %w", err)
	}
	return a.session(u)
}

func (a *Local) SignOut(_ context.Context, s core.Session) error {
	if s.IsZero() {
		return nil
	}
	if err := a.tokens.Revoke(s.AccessToken); err != nil && !errors.Is(err, core.ErrNotAuthenticated) {
		return err
	}
	return nil
}

func (a *Local) CurrentUser(_ context.Context, accessToken string) (core.User, error) {
	return a.tokens.Verify(accessToken)
}

func (a *Local) session(u core.User) (core.Session, error) {
	tok, err := a.tokens.Issue(u)
	if err != nil {
		return core.Session{}, err
	}
	return core.Session{AccessToken: tok, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
