// Package memory holds in-process repository implementations. They honour
// the same uniqueness rules as the persistent stores and are used by tests
// and local tooling.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepository returns an empty in-memory user store.
func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]domain.User)}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepository) FindByProviderID(ctx context.Context, providerID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ProviderID != nil && *user.ProviderID == providerID {
			return cloneUser(user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
		if sameIdentity(existing, *user) {
			return domain.ErrIdentityConflict
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = *cloneUser(*user)
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	existing.Name = cloneString(user.Name)
	existing.AvatarURL = cloneString(user.AvatarURL)
	existing.UpdatedAt = user.UpdatedAt
	r.users[user.ID] = existing

	user.CreatedAt = existing.CreatedAt
	return nil
}

func sameIdentity(a, b domain.User) bool {
	if a.ProviderID == nil || b.ProviderID == nil {
		return false
	}
	return a.Provider == b.Provider && *a.ProviderID == *b.ProviderID
}

func cloneUser(u domain.User) *domain.User {
	u.Name = cloneString(u.Name)
	u.AvatarURL = cloneString(u.AvatarURL)
	u.PasswordHash = cloneString(u.PasswordHash)
	u.ProviderID = cloneString(u.ProviderID)
	return &u
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
