package task

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

// CreateInput carries the fields of a new task. An empty Status means
// domain.StatusToDo.
type CreateInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    domain.Priority
	Status      domain.Status
}

func (in CreateInput) validate() error {
	if in.Title == "" {
		return domain.Invalid("title", "is required")
	}
	if in.DueDate.IsZero() {
		return domain.Invalid("due_date", "is required")
	}
	if !in.Priority.Valid() {
		return domain.Invalid("priority", "must be one of low, medium, high")
	}
	if in.Status != "" && !in.Status.Valid() {
		return domain.Invalid("status", "must be one of to do, in progress, done")
	}
	return nil
}

// UpdateInput is a partial update. Nil fields keep their stored value.
type UpdateInput struct {
	ID          string
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *domain.Priority
	Status      *domain.Status
}

func (in UpdateInput) validate() error {
	if in.ID == "" {
		return domain.Invalid("id", "is required")
	}
	if in.Title != nil && *in.Title == "" {
		return domain.Invalid("title", "must not be empty")
	}
	if in.DueDate != nil && in.DueDate.IsZero() {
		return domain.Invalid("due_date", "must not be empty")
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return domain.Invalid("priority", "must be one of low, medium, high")
	}
	if in.Status != nil && !in.Status.Valid() {
		return domain.Invalid("status", "must be one of to do, in progress, done")
	}
	return nil
}

func (in UpdateInput) apply(task *domain.Task) {
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate.UTC()
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
}
