package ports

import (
	"context"

	"github.com/taskforge/task-system/internal/core/domain"
)

// AuthService implements registration, login, and identity resolution.
// Register and Login return the persisted user plus a freshly signed token.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// CurrentUser resolves the subject identifier carried by a verified
	// token back to a live account. A valid token whose account no longer
	// exists yields domain.ErrUserNotFound.
	CurrentUser(ctx context.Context, subjectID string) (*domain.User, error)
}

// LoginThrottle rate-limits failed login attempts per email. Implementations
// fail open: a throttle backend outage must not lock every account out.
type LoginThrottle interface {
	// Allow reports whether another attempt is permitted for this email.
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, email string) error
}
