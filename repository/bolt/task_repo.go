package bolt

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	db *bbolt.DB
}

// NewTaskRepository creates a BoltDB-backed task repository.
func NewTaskRepository(db *bbolt.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Insert(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(boltInfra.BucketUsers).Get([]byte(task.UserID)) == nil {
			return domain.ErrUserNotFound
		}
		return putTask(tx, task)
	})
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		task, err = loadTask(tx, []byte(id))
		return err
	})
	return task, err
}

func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltInfra.BucketTasks).ForEach(func(k, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			if task.UserID == userID {
				tasks = append(tasks, task)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(tasks)
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		existing, err := loadTask(tx, []byte(task.ID))
		if err != nil {
			return err
		}
		task.UserID = existing.UserID
		task.CreatedAt = existing.CreatedAt
		return putTask(tx, task)
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := r.db.Update(func(tx *bbolt.Tx) error {
		var err error
		task, err = loadTask(tx, []byte(id))
		if err != nil {
			return err
		}
		return tx.Bucket(boltInfra.BucketTasks).Delete([]byte(id))
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func loadTask(tx *bbolt.Tx, id []byte) (*domain.Task, error) {
	raw := tx.Bucket(boltInfra.BucketTasks).Get(id)
	if raw == nil {
		return nil, domain.ErrTaskNotFound
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func putTask(tx *bbolt.Tx, task *domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return tx.Bucket(boltInfra.BucketTasks).Put([]byte(task.ID), payload)
}
