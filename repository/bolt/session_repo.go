package bolt

import (
	"context"
	"encoding/json"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
)

// SessionRepository keeps sessions in bolt. Bolt has no key expiry, so
// expired sessions are hidden on read and removed by PurgeExpired.
type SessionRepository struct {
	db  *bbolt.DB
	ttl time.Duration
}

func NewSessionRepository(db *bbolt.DB, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{db: db, ttl: ttl}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(boltInfra.BucketSessions).Get([]byte(id))
		if raw == nil {
			return domain.ErrSessionNotFound
		}
		return json.Unmarshal(raw, &session)
	})
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltInfra.BucketSessions).Put([]byte(session.ID), payload)
	})
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltInfra.BucketSessions).Delete([]byte(id))
	})
}

func (r *SessionRepository) Extend(ctx context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(boltInfra.BucketSessions)
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return domain.ErrSessionNotFound
		}
		var session domain.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return err
		}
		session.ExpiresAt = time.Now().Add(ttl)
		payload, err := json.Marshal(session)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), payload)
	})
}

// PurgeExpired removes sessions that expired before now.
func (r *SessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	var purged int
	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(boltInfra.BucketSessions)
		var expired [][]byte
		if err := bucket.ForEach(func(k, v []byte) error {
			var session domain.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return nil
			}
			if session.IsExpired(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		purged = len(expired)
		return nil
	})
	return purged, err
}

var (
	_ repository.SessionRepository = (*SessionRepository)(nil)
	_ repository.SessionPurger     = (*SessionRepository)(nil)
)
