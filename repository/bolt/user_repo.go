// Package bolt stores users, tasks and sessions in an embedded BoltDB file.
// Uniqueness checks and writes share one read-write transaction, and bolt
// allows a single writer at a time, so concurrent inserts cannot race.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
)

// userRecord is the stored form of a user, credentials included.
type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	PasswordHash *string   `json:"password_hash,omitempty"`
	Provider     string    `json:"provider"`
	ProviderID   *string   `json:"provider_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		AvatarURL:    u.AvatarURL,
		PasswordHash: u.PasswordHash,
		Provider:     string(u.Provider),
		ProviderID:   u.ProviderID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		AvatarURL:    r.AvatarURL,
		PasswordHash: r.PasswordHash,
		Provider:     domain.Provider(r.Provider),
		ProviderID:   r.ProviderID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type userRepository struct {
	db *bbolt.DB
}

// NewUserRepository creates a BoltDB-backed user repository.
func NewUserRepository(db *bbolt.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = loadUser(tx, []byte(id))
		return err
	})
	return user, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(boltInfra.BucketUsersByEmail).Get([]byte(email))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) FindByProviderID(ctx context.Context, providerID string) (*domain.User, error) {
	var user *domain.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		prefix := []byte(providerID + "\x00")
		k, id := tx.Bucket(boltInfra.BucketUsersByProvider).Cursor().Seek(prefix)
		if k == nil || !bytes.HasPrefix(k, prefix) {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		byEmail := tx.Bucket(boltInfra.BucketUsersByEmail)
		if byEmail.Get([]byte(user.Email)) != nil {
			return domain.ErrEmailTaken
		}

		byProvider := tx.Bucket(boltInfra.BucketUsersByProvider)
		var identityKey []byte
		if user.ProviderID != nil {
			identityKey = providerKey(*user.ProviderID, user.Provider)
			if byProvider.Get(identityKey) != nil {
				return domain.ErrIdentityConflict
			}
		}

		if err := putUser(tx, user); err != nil {
			return err
		}
		if err := byEmail.Put([]byte(user.Email), []byte(user.ID)); err != nil {
			return err
		}
		if identityKey != nil {
			return byProvider.Put(identityKey, []byte(user.ID))
		}
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		existing, err := loadUser(tx, []byte(user.ID))
		if err != nil {
			return err
		}
		existing.Name = user.Name
		existing.AvatarURL = user.AvatarURL
		existing.UpdatedAt = user.UpdatedAt
		user.CreatedAt = existing.CreatedAt
		return putUser(tx, existing)
	})
}

func loadUser(tx *bbolt.Tx, id []byte) (*domain.User, error) {
	raw := tx.Bucket(boltInfra.BucketUsers).Get(id)
	if raw == nil {
		return nil, domain.ErrUserNotFound
	}
	var record userRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func putUser(tx *bbolt.Tx, user *domain.User) error {
	payload, err := json.Marshal(toUserRecord(user))
	if err != nil {
		return err
	}
	return tx.Bucket(boltInfra.BucketUsers).Put([]byte(user.ID), payload)
}

func providerKey(providerID string, provider domain.Provider) []byte {
	return []byte(providerID + "\x00" + string(provider))
}
