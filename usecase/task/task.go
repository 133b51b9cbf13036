// Package task implements the owner-scoped task operations. Every call
// takes the authenticated user id explicitly; a task that is missing and
// one owned by somebody else produce the same error.
package task

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type UseCase struct {
	tasks  repository.TaskRepository
	clock  domain.Clock
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		clock:  domain.SystemClock,
		logger: logger,
	}
}

func (uc *UseCase) WithClock(clock domain.Clock) *UseCase {
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

func (uc *UseCase) Create(ctx context.Context, in CreateInput, userID string) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.StatusToDo
	}
	task := &domain.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate.UTC(),
		Priority:    in.Priority,
		Status:      status,
	}
	task.Touch(uc.clock())

	if err := uc.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}
	uc.logger.Debug("task created", zap.String("task_id", task.ID), zap.String("user_id", userID))
	return task, nil
}

// List returns the user's tasks, newest first. It never returns nil.
func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	tasks, err := uc.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (uc *UseCase) Update(ctx context.Context, in UpdateInput, userID string) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	task, err := uc.owned(ctx, in.ID, userID)
	if err != nil {
		return nil, err
	}
	in.apply(task)
	return uc.save(ctx, task)
}

// UpdateStatus moves a task to status. Any status may follow any other.
func (uc *UseCase) UpdateStatus(ctx context.Context, id string, status domain.Status, userID string) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if id == "" {
		return nil, domain.Invalid("id", "is required")
	}
	if !status.Valid() {
		return nil, domain.Invalid("status", "must be one of to do, in progress, done")
	}

	task, err := uc.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	task.Status = status
	return uc.save(ctx, task)
}

// Delete removes the task and returns its last state.
func (uc *UseCase) Delete(ctx context.Context, id, userID string) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if id == "" {
		return nil, domain.Invalid("id", "is required")
	}

	if _, err := uc.owned(ctx, id, userID); err != nil {
		return nil, err
	}
	deleted, err := uc.tasks.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFoundOrForbidden
		}
		return nil, err
	}
	uc.logger.Debug("task deleted", zap.String("task_id", id), zap.String("user_id", userID))
	return deleted, nil
}

// owned loads a task and checks it belongs to userID.
func (uc *UseCase) owned(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, err := uc.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFoundOrForbidden
		}
		return nil, err
	}
	if !task.OwnedBy(userID) {
		uc.logger.Info("task access denied", zap.String("task_id", id), zap.String("user_id", userID))
		return nil, domain.ErrTaskNotFoundOrForbidden
	}
	return task, nil
}

func (uc *UseCase) save(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	task.Touch(uc.clock())
	if err := uc.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFoundOrForbidden
		}
		return nil, err
	}
	return task, nil
}
