package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// UserRepository persists users. Implementations enforce email uniqueness
// and report collisions with domain.ErrEmailTaken.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByProviderID(ctx context.Context, providerID string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}
