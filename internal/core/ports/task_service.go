package ports

import (
	"context"
	"time"

	"github.com/taskforge/task-system/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Completed   bool
	DueDate     *time.Time
	Priority    string
}

// UpdateTaskInput carries a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
	Priority    *string
}

// ListTasksInput carries the parameters for the list endpoint.
type ListTasksInput struct {
	Status string
	Sort   string
}

// TaskService defines use-case operations for tasks. Every method takes the
// authenticated owner's id; resource-scoped methods check ownership after
// existence, so a missing task is domain.ErrTaskNotFound and someone else's
// task is domain.ErrForbidden.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID string, input CreateTaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	ListTasks(ctx context.Context, ownerID string, input ListTasksInput) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID string, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
	SetCompleted(ctx context.Context, ownerID, taskID string, completed bool) (*domain.Task, error)
}
