package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskforge/task-system/internal/core/domain"
	"github.com/taskforge/task-system/internal/core/ports"
	"github.com/taskforge/task-system/internal/pkg/password"
	"github.com/taskforge/task-system/internal/pkg/token"
)

// AuthService implements registration, login, and identity resolution.
type AuthService struct {
	users    ports.UserRepository
	hasher   password.Hasher
	codec    *token.Codec
	throttle ports.LoginThrottle // optional, nil disables throttling
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	hasher password.Hasher,
	codec *token.Codec,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		codec:    codec,
		throttle: throttle,
		log:      log,
	}
}

// Register creates a new account and returns it with a signed token. A taken
// email yields domain.ErrEmailExists. The FindByEmail pre-check is a fast
// path only; the store's unique index is the authoritative conflict signal,
// so a lost check-then-insert race still resolves to ErrEmailExists.
func (s *AuthService) Register(ctx context.Context, name, email, plaintext string) (*domain.User, string, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", domain.ErrEmailExists
	}

	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uuid.NewString(),
		Email:          email,
		Name:           name,
		PasswordDigest: digest,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	signed, err := s.codec.Issue(created.ID, created.Email, created.Name, 0)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, signed, nil
}

// Login authenticates by email and password. Unknown email and wrong password
// both return domain.ErrInvalidCredentials so a caller cannot tell which half
// of the pair was wrong.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (*domain.User, string, error) {
	if !s.allowAttempt(ctx, email) {
		return nil, "", domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !s.hasher.Verify(plaintext, user.PasswordDigest) {
		s.recordFailure(ctx, email)
		return nil, "", domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("throttle reset failed")
		}
	}

	signed, err := s.codec.Issue(user.ID, user.Email, user.Name, 0)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return user, signed, nil
}

// CurrentUser resolves a verified token subject back to a live account.
func (s *AuthService) CurrentUser(ctx context.Context, subjectID string) (*domain.User, error) {
	return s.users.FindByID(ctx, subjectID)
}

// allowAttempt consults the throttle, failing open on backend errors so an
// outage cannot lock every account out.
func (s *AuthService) allowAttempt(ctx context.Context, email string) bool {
	if s.throttle == nil {
		return true
	}
	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("throttle check failed, allowing attempt")
		return true
	}
	return allowed
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("throttle record failed")
	}
}
