package ports

import (
	"context"

	"github.com/taskforge/task-system/internal/core/domain"
)

// UserRepository is the narrow persistence contract the auth flow needs.
// Uniqueness of email is enforced by the store (unique index); Create must
// surface a violation as domain.ErrEmailExists.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
