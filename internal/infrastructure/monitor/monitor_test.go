package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
)

func TestRefresh(t *testing.T) {
	up := Check{Name: "up", Ping: func(context.Context) error { return nil }}
	down := Check{Name: "down", Ping: func(context.Context) error { return errors.New("refused") }}

	m := New([]Check{up}, 0, nil)
	if m.IsOnline() {
		t.Fatal("monitor must not report online before the first check")
	}
	m.Refresh()
	if !m.IsOnline() {
		t.Fatalf("expected online, got %+v", m.GetStatus())
	}

	m = New([]Check{up, down, {Name: "unset"}}, 0, nil)
	m.Refresh()
	status := m.GetStatus()
	if status.Healthy() {
		t.Fatal("expected degraded status")
	}
	if !status.Services["up"] || status.Services["down"] || status.Services["unset"] {
		t.Fatalf("unexpected services: %v", status.Services)
	}
}

func TestGetStatus_ReturnsCopy(t *testing.T) {
	m := New([]Check{{Name: "up", Ping: func(context.Context) error { return nil }}}, 0, nil)
	m.Refresh()
	m.GetStatus().Services["up"] = false
	if !m.GetStatus().Services["up"] {
		t.Fatal("status map shared with caller")
	}
}

func TestBoltCheck(t *testing.T) {
	db, err := boltInfra.Open(filepath.Join(t.TempDir(), "health.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	check := BoltCheck(db)
	if err := check.Ping(context.Background()); err != nil {
		t.Fatalf("Ping open db: %v", err)
	}
	db.Close()
	if err := check.Ping(context.Background()); err == nil {
		t.Fatal("expected error from closed db")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(nil, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
