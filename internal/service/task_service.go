package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// TaskService exposes the owner-scoped task operations. A task belonging
// to someone else is reported as store.ErrTaskNotFound.
type TaskService interface {
	// Create adds a task at the end of the owner's list with the initial status.
	Create(ctx context.Context, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error)
	List(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error)
	Get(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error)
	// Update replaces the content fields, and status/completion when supplied.
	Update(ctx context.Context, owner uuid.UUID, id int64, r domain.TaskReplacement) (*domain.Task, error)
	// Patch changes only the supplied fields. A new Order repositions the
	// task without touching any other.
	Patch(ctx context.Context, owner uuid.UUID, id int64, p domain.TaskPatch) (*domain.Task, error)
	// Complete marks the task done. Repeating it keeps the first CompletedAt.
	Complete(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error)
	Delete(ctx context.Context, owner uuid.UUID, id int64) error
}

type taskService struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

var _ TaskService = (*taskService)(nil)

// NewTaskService creates a TaskService backed by tasks.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskService{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

func (s *taskService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Create implements TaskService.
func (s *taskService) Create(ctx context.Context, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error) {
	task, err := domain.NewTask(owner, fields)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, owner, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.log(ctx).Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.Float64("order", task.Order))
	return task, nil
}

// List implements TaskService.
func (s *taskService) List(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get implements TaskService.
func (s *taskService) Get(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return task, nil
}

// Update implements TaskService.
func (s *taskService) Update(
	ctx context.Context,
	owner uuid.UUID,
	id int64,
	r domain.TaskReplacement,
) (*domain.Task, error) {
	return s.modify(ctx, owner, id, "update", func(t *domain.Task, now time.Time) error {
		return t.Replace(r, now)
	})
}

// Patch implements TaskService.
func (s *taskService) Patch(ctx context.Context, owner uuid.UUID, id int64, p domain.TaskPatch) (*domain.Task, error) {
	return s.modify(ctx, owner, id, "patch", func(t *domain.Task, now time.Time) error {
		return t.ApplyPatch(p, now)
	})
}

// Complete implements TaskService.
func (s *taskService) Complete(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	done := true
	return s.Patch(ctx, owner, id, domain.TaskPatch{IsCompleted: &done})
}

func (s *taskService) modify(
	ctx context.Context,
	owner uuid.UUID,
	id int64,
	op string,
	fn store.TaskMutation,
) (*domain.Task, error) {
	task, err := s.tasks.Modify(ctx, owner, id, fn)
	if err != nil {
		return nil, fmt.Errorf("failed to %s task %d: %w", op, id, err)
	}
	s.log(ctx).Debug("task modified",
		slog.String("op", op),
		slog.Int64("task_id", id),
		slog.Bool("is_completed", task.IsCompleted))
	return task, nil
}

// Delete implements TaskService.
func (s *taskService) Delete(ctx context.Context, owner uuid.UUID, id int64) error {
	if err := s.tasks.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	s.log(ctx).Debug("task deleted", slog.Int64("task_id", id))
	return nil
}
