package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	users   map[string]User
	touched map[string]string
}

func newMemStore() *memStore {
	return &memStore{users: map[string]User{}, touched: map[string]string{}}
}

func (m *memStore) CreateUser(u User) error {
	m.users[u.Username] = u
	return nil
}

func (m *memStore) GetUser(username string) (*User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memStore) TouchLogin(username, at string) error {
	m.touched[username] = at
	return nil
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice", "s3cret", true)
	if err != nil {
		t.Fatalf("NewUser() error = %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret" {
		t.Errorf("password not hashed: %q", u.PasswordHash)
	}
	if !u.IsAdmin || u.CreatedAt == "" {
		t.Errorf("user = %+v", u)
	}

	if _, err := NewUser("", "x", false); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("error = %v, want ErrEmptyUsername", err)
	}
	if _, err := NewUser("bob", "", false); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("error = %v, want ErrEmptyPassword", err)
	}
}

func TestAuthenticator_Login(t *testing.T) {
	store := newMemStore()
	u, err := NewUser("alice", "s3cret", false)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.CreateUser(u)

	a := NewAuthenticatorWithLimit(store, rate.Inf, 1)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	got, err := a.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.LastLoginAt != "2025-03-01T12:00:00Z" || store.touched["alice"] != got.LastLoginAt {
		t.Errorf("login time not recorded: %+v %v", got, store.touched)
	}

	if _, err := a.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := a.Login(context.Background(), "mallory", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v", err)
	}
	if _, err := a.Login(context.Background(), "", "x"); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("empty user error = %v", err)
	}
	if _, err := a.Login(context.Background(), "alice", ""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("empty password error = %v", err)
	}
}

func TestAuthenticator_Throttled(t *testing.T) {
	store := newMemStore()
	u, _ := NewUser("alice", "s3cret", false)
	_ = store.CreateUser(u)

	// One attempt per hour with a burst of one: the second attempt cannot get
	// a slot before the context deadline.
	a := NewAuthenticatorWithLimit(store, rate.Every(time.Hour), 1)
	if _, err := a.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("first attempt error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := a.Login(ctx, "alice", "s3cret")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("second attempt error = %v, want throttling error", err)
	}
}

// passwords returns a PasswordSource over a fixed list.
func passwords(list ...string) PasswordSource {
	i := 0
	return func() (string, bool, error) {
		if i >= len(list) {
			return "", false, nil
		}
		i++
		return list[i-1], true, nil
	}
}

func TestLoginWithRetries_DelaysSecondAttempt(t *testing.T) {
	store := newMemStore()
	u, _ := NewUser("alice", "s3cret", false)
	_ = store.CreateUser(u)

	const interval = 500 * time.Millisecond
	a := NewAuthenticatorWithLimit(store, rate.Every(interval), 1)

	start := time.Now()
	got, attempts, err := a.LoginWithRetries(context.Background(), "alice", passwords("wrong", "s3cret"), 3)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("LoginWithRetries() error = %v", err)
	}
	if attempts != 2 || got.Username != "alice" {
		t.Errorf("attempts = %d, user = %+v", attempts, got)
	}
	// The first attempt takes the only token; the retry waits for the next.
	if elapsed < interval-100*time.Millisecond {
		t.Errorf("retry after a wrong password took %v, want at least ~%v", elapsed, interval)
	}
}

func TestLoginWithRetries_Exhausted(t *testing.T) {
	store := newMemStore()
	u, _ := NewUser("alice", "s3cret", false)
	_ = store.CreateUser(u)
	a := NewAuthenticatorWithLimit(store, rate.Inf, 1)

	tests := []struct {
		name         string
		source       PasswordSource
		max          int
		wantAttempts int
		wantErr      error
	}{
		{"all wrong", passwords("a", "b", "c", "s3cret"), 3, 3, ErrInvalidCredentials},
		{"source ends", passwords("a"), 3, 1, ErrInvalidCredentials},
		{"no input", passwords(), 3, 0, ErrEmptyPassword},
		{"blank lines then right", passwords("", "s3cret"), 3, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, attempts, err := a.LoginWithRetries(context.Background(), "alice", tt.source, tt.max)
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if (tt.wantErr == nil && err != nil) || (tt.wantErr != nil && !errors.Is(err, tt.wantErr)) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewAuthenticator_BurstOfOne(t *testing.T) {
	a := NewAuthenticator(newMemStore())
	if a.limiter.Burst() != 1 {
		t.Errorf("Burst() = %d, want 1", a.limiter.Burst())
	}
}
