// Package auth manages local users and password checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// User is a local account.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
	CreatedAt    string `json:"created_at"`
	LastLoginAt  string `json:"last_login_at,omitempty"`
}

// Store persists users.
type Store interface {
	CreateUser(u User) error
	GetUser(username string) (*User, error)
	TouchLogin(username, at string) error
}

// Errors.
var (
	ErrEmptyUsername      = errors.New("username is required")
	ErrEmptyPassword      = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Login attempts allowed per second and the burst before throttling kicks in.
// With a burst of one, every attempt after the first waits for a token.
const (
	DefaultLoginRate  = 1
	DefaultLoginBurst = 1
)

// DefaultMaxAttempts is how many passwords LoginWithRetries tries.
const DefaultMaxAttempts = 3

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// NewUser builds a user record with a hashed password.
func NewUser(username, password string, isAdmin bool) (User, error) {
	if username == "" {
		return User{}, ErrEmptyUsername
	}
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	return User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Authenticator verifies credentials against a Store. Attempts pass through a
// token bucket so repeated guesses are slowed down.
type Authenticator struct {
	store   Store
	limiter *rate.Limiter
	now     func() time.Time
}

// NewAuthenticator creates an Authenticator with the default login rate.
func NewAuthenticator(store Store) *Authenticator {
	return NewAuthenticatorWithLimit(store, rate.Limit(DefaultLoginRate), DefaultLoginBurst)
}

// NewAuthenticatorWithLimit creates an Authenticator with a custom rate.
func NewAuthenticatorWithLimit(store Store, limit rate.Limit, burst int) *Authenticator {
	return &Authenticator{
		store:   store,
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

// Login checks the password and records the login time on success.
// Unknown users and wrong passwords both return ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for login slot: %w", err)
	}

	u, err := a.store.GetUser(username)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	u.LastLoginAt = a.now().UTC().Format(time.RFC3339)
	if err := a.store.TouchLogin(username, u.LastLoginAt); err != nil {
		return nil, fmt.Errorf("recording login: %w", err)
	}
	return u, nil
}

// PasswordSource yields successive password attempts. ok is false once the
// source is exhausted.
type PasswordSource func() (password string, ok bool, err error)

// LoginWithRetries tries passwords from next until one succeeds, the source
// runs out or maxAttempts is reached. All attempts share the authenticator's
// limiter, so each retry after a wrong guess is delayed. It returns the number
// of attempts made.
func (a *Authenticator) LoginWithRetries(ctx context.Context, username string, next PasswordSource, maxAttempts int) (*User, int, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	lastErr := ErrEmptyPassword
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		password, ok, err := next()
		if err != nil {
			return nil, attempt - 1, err
		}
		if !ok {
			return nil, attempt - 1, lastErr
		}
		u, err := a.Login(ctx, username, password)
		if err == nil {
			return u, attempt, nil
		}
		if !errors.Is(err, ErrInvalidCredentials) && !errors.Is(err, ErrEmptyPassword) {
			return nil, attempt, err
		}
		lastErr = err
	}
	return nil, maxAttempts, lastErr
}
