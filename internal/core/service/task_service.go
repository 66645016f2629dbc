package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskforge/task-system/internal/core/domain"
	"github.com/taskforge/task-system/internal/core/ports"
)

// TaskService implements task CRUD scoped to the authenticated owner.
type TaskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log}
}

// CreateTask persists a new task owned by ownerID. Priority defaults to
// medium when unset.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		DueDate:     input.DueDate,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.log.Error().Err(err).Msg("failed to create task")
		return nil, err
	}

	s.log.Info().Str("task_id", task.ID).Str("user_id", ownerID).Msg("task created")
	return task, nil
}

// GetTask returns the task if it exists and ownerID owns it.
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.authorize(ctx, ownerID, taskID)
}

// ListTasks returns ownerID's tasks, filtered and sorted per input. An empty
// status or sort falls back to "all" and "created" respectively.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string, input ports.ListTasksInput) ([]*domain.Task, error) {
	filter := ports.ListTasksFilter{
		UserID: ownerID,
		Status: input.Status,
		Sort:   input.Sort,
	}
	if filter.Status == "" {
		filter.Status = ports.StatusAll
	}
	if filter.Sort == "" {
		filter.Sort = ports.SortCreated
	}
	return s.repo.List(ctx, filter)
}

// UpdateTask applies a partial update to an owned task and bumps updated_at.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID string, input ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.authorize(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes an owned task.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	if _, err := s.authorize(ctx, ownerID, taskID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, taskID)
}

// SetCompleted flips the completion flag on an owned task.
func (s *TaskService) SetCompleted(ctx context.Context, ownerID, taskID string, completed bool) (*domain.Task, error) {
	task, err := s.authorize(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	task.Completed = completed
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// authorize fetches the task and enforces ownership. Existence is checked
// before ownership: a missing task is ErrTaskNotFound, an existing task owned
// by someone else is ErrForbidden.
func (s *TaskService) authorize(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != ownerID {
		s.log.Warn().Str("task_id", taskID).Str("user_id", ownerID).Msg("ownership check failed")
		return nil, domain.ErrForbidden
	}
	return task, nil
}
