package redis

import (
	"testing"

	"github.com/fastygo/taskboard/internal/config"
)

func TestOptions(t *testing.T) {
	opts, err := options(config.RedisConfig{URL: "redis://:from-url@cache:6380/1", Password: "override", DB: 4})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "override" || opts.DB != 4 {
		t.Fatalf("unexpected options: addr=%s db=%d", opts.Addr, opts.DB)
	}

	opts, err = options(config.RedisConfig{URL: "redis://localhost:6379/2"})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.DB != 2 {
		t.Fatalf("db from url = %d", opts.DB)
	}
}

func TestOptions_BadURL(t *testing.T) {
	if _, err := options(config.RedisConfig{URL: "http://localhost"}); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}
