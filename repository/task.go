package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository persists tasks. It does not check ownership; callers load
// a task, compare its owner and only then mutate it.
type TaskRepository interface {
	Insert(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByUser returns the user's tasks, most recently created first.
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) (*domain.Task, error)
}
