package postgres

import (
	"testing"
	"time"

	"github.com/fastygo/taskboard/internal/config"
)

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig(config.DatabaseConfig{
		URL:             "postgres://taskboard:pw@db.internal:5433/taskboard?sslmode=disable",
		MaxOpenConns:    12,
		MaxIdleConns:    3,
		MaxConnLifetime: 30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if cfg.MaxConns != 12 || cfg.MinConns != 3 || cfg.MaxConnLifetime != 30*time.Minute {
		t.Fatalf("pool limits not applied: %+v", cfg)
	}
	if cfg.ConnConfig.Host != "db.internal" || cfg.ConnConfig.Port != 5433 || cfg.ConnConfig.Database != "taskboard" {
		t.Fatalf("connection not parsed: %+v", cfg.ConnConfig)
	}
}

func TestPoolConfig_InvalidURL(t *testing.T) {
	if _, err := poolConfig(config.DatabaseConfig{URL: "postgres://%zz"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSourceURL(t *testing.T) {
	if got := sourceURL("./assets/migrations"); got != "file://./assets/migrations" {
		t.Fatalf("sourceURL = %q", got)
	}
}
