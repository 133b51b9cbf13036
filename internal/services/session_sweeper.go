package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/repository"
)

// SessionSweeper periodically deletes expired sessions from stores that do
// not expire keys on their own.
type SessionSweeper struct {
	store    repository.SessionPurger
	logger   *zap.Logger
	cron     *cron.Cron
	interval time.Duration
	now      func() time.Time
}

func NewSessionSweeper(store repository.SessionPurger, interval time.Duration, logger *zap.Logger) *SessionSweeper {
	if interval < time.Second {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionSweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("session sweep failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *SessionSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.Duration("interval", s.interval))
}

// Stop waits for a running sweep or for ctx, whichever ends first.
func (s *SessionSweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("session sweeper stopped")
}

// Sweep purges expired sessions once and reports how many were removed.
func (s *SessionSweeper) Sweep(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	purged, err := s.store.PurgeExpired(ctx, s.now())
	if err != nil {
		return purged, err
	}
	if purged > 0 {
		s.logger.Info("expired sessions purged", zap.Int("count", purged))
	}
	return purged, nil
}
