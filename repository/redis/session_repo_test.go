package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
)

// fakeRedis implements the handful of commands the repository issues.
type fakeRedis struct {
	redislib.Cmdable

	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redislib.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.data[key]
	if !ok {
		return redislib.NewStringResult("", redislib.Nil)
	}
	return redislib.NewStringResult(string(val), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redislib.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return redislib.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetXX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redislib.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return redislib.NewBoolResult(false, nil)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return redislib.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redislib.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			delete(f.ttls, key)
			n++
		}
	}
	return redislib.NewIntResult(n, nil)
}

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	client := newFakeRedis()
	repo := NewSessionRepository(client, time.Hour)
	ctx := context.Background()

	now := time.Now()
	session := &domain.Session{ID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(30 * time.Minute)}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := client.ttls[sessionPrefix+"s1"]; ttl <= 29*time.Minute || ttl > 30*time.Minute {
		t.Fatalf("key ttl = %v", ttl)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "u1" || !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionRepository_SaveDefaultsTTL(t *testing.T) {
	client := newFakeRedis()
	repo := NewSessionRepository(client, 2*time.Hour)
	session := &domain.Session{ID: "s1", UserID: "u1"}
	if err := repo.Save(context.Background(), session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if client.ttls[sessionPrefix+"s1"] != 2*time.Hour || session.ExpiresAt.IsZero() {
		t.Fatalf("default ttl not applied: %v %+v", client.ttls[sessionPrefix+"s1"], session)
	}
}

func TestSessionRepository_Extend(t *testing.T) {
	client := newFakeRedis()
	repo := NewSessionRepository(client, time.Hour)
	ctx := context.Background()

	if err := repo.Extend(ctx, "missing", time.Hour); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("extend missing: %v", err)
	}

	now := time.Now()
	if err := repo.Save(ctx, &domain.Session{ID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Extend(ctx, "s1", 3*time.Hour); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ExpiresAt.Before(now.Add(3*time.Hour)) || client.ttls[sessionPrefix+"s1"] != 3*time.Hour {
		t.Fatalf("expiry not extended: %v ttl=%v", got.ExpiresAt, client.ttls[sessionPrefix+"s1"])
	}
}
