package monitor

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	bbolt "go.etcd.io/bbolt"

	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
)

func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "postgresql", Timeout: 3 * time.Second, Ping: func(ctx context.Context) error {
		return pool.Ping(ctx)
	}}
}

func RedisCheck(client redislib.UniversalClient) Check {
	return Check{Name: "redis", Timeout: 2 * time.Second, Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

func BoltCheck(db *bbolt.DB) Check {
	return Check{Name: "bolt", Timeout: time.Second, Ping: func(ctx context.Context) error {
		return boltInfra.Ping(db)
	}}
}
