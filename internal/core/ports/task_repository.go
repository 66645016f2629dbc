package ports

import (
	"context"

	"github.com/taskforge/task-system/internal/core/domain"
)

// Status filter values accepted by ListTasksFilter.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Sort orders accepted by ListTasksFilter.
const (
	SortCreated = "created"  // created_at descending (default)
	SortTitle   = "title"    // title ascending
	SortDueDate = "due_date" // due_date descending
)

// ListTasksFilter carries the query parameters for listing tasks.
// UserID is always set by the service layer; a task list is never global.
type ListTasksFilter struct {
	UserID string
	Status string // "all", "pending", or "completed"
	Sort   string // "created", "title", or "due_date"
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	// FindByID retrieves a task regardless of owner; the service layer
	// performs the ownership check so that not-found and forbidden stay
	// distinguishable.
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}
