package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskforge/task-system/internal/core/domain"
	"github.com/taskforge/task-system/internal/pkg/password"
	"github.com/taskforge/task-system/internal/pkg/token"
)

type stubUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.byEmail[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrEmailExists
	}
	copy := cloneUser(user)
	r.byEmail[copy.Email] = copy
	r.byID[copy.ID] = copy
	return cloneUser(copy), nil
}

type stubThrottle struct {
	allowed  bool
	failures int
	resets   int
}

func (t *stubThrottle) Allow(_ context.Context, _ string) (bool, error) {
	return t.allowed, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, _ string) error {
	t.failures++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, _ string) error {
	t.resets++
	return nil
}

func newAuthService(repo *stubUserRepo, throttle *stubThrottle) *AuthService {
	if throttle == nil {
		return NewAuthService(repo, password.NewHasher(), token.NewCodec("secret", time.Hour), nil, zerolog.Nop())
	}
	return NewAuthService(repo, password.NewHasher(), token.NewCodec("secret", time.Hour), throttle, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	user, signed, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected user with id, got %+v", user)
	}
	if user.PasswordDigest == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if !user.IsActive {
		t.Fatalf("expected new user to be active")
	}
	if signed == "" {
		t.Fatalf("expected token, got empty")
	}

	claims, err := token.NewCodec("secret", time.Hour).Verify(signed)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("token subject %q does not match user id %q", claims.Subject, user.ID)
	}
	if claims.Email != "ann@x.com" || claims.Name != "Ann" {
		t.Fatalf("unexpected embedded claims: %+v", claims)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	if _, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "Ann2", "ann@x.com", "other66"); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthService_Register_StoreRaceStillConflicts(t *testing.T) {
	// Simulate losing the check-then-insert race: the pre-check misses but
	// the store's unique index rejects the insert.
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	if _, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	repo.findErr = domain.ErrUserNotFound

	_, _, err := svc.Register(context.Background(), "Bob", "ann@x.com", "secret2")
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists from store, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	registered, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, signed, err := svc.Login(context.Background(), "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("login returned id %q, register returned %q", user.ID, registered.ID)
	}
	if signed == "" {
		t.Fatalf("expected token, got empty")
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	if _, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, wrongPassword := svc.Login(context.Background(), "ann@x.com", "wrong66")
	_, _, unknownEmail := svc.Login(context.Background(), "ghost@x.com", "secret1")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
	// Both failure modes must be externally indistinguishable.
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("login failures are distinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{allowed: false}
	svc := newAuthService(repo, throttle)

	if _, _, err := svc.Login(context.Background(), "ann@x.com", "secret1"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_ThrottleAccounting(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{allowed: true}
	svc := newAuthService(repo, throttle)

	if _, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, _ = svc.Login(context.Background(), "ann@x.com", "wrong66")
	if throttle.failures != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", throttle.failures)
	}

	if _, _, err := svc.Login(context.Background(), "ann@x.com", "secret1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if throttle.resets != 1 {
		t.Fatalf("expected 1 reset after success, got %d", throttle.resets)
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	registered, _, err := svc.Register(context.Background(), "Ann", "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.CurrentUser(context.Background(), registered.ID)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Email != "ann@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.CurrentUser(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
