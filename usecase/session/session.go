// Package session issues and checks login sessions. A session lives in a
// SessionRepository; the client holds a signed bearer token naming it.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/token"
	"github.com/fastygo/taskboard/repository"
)

// DefaultTTL applies when no session lifetime is configured.
const DefaultTTL = 24 * time.Hour

// TokenSigner signs and verifies bearer tokens.
type TokenSigner interface {
	Sign(subject, sessionID string, expiresAt time.Time) (string, error)
	Parse(raw string) (*token.Claims, error)
}

// Issued is a stored session together with its bearer token.
type Issued struct {
	Session *domain.Session
	Token   string
}

// Principal identifies the caller behind a verified token.
type Principal struct {
	UserID    string
	SessionID string
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   TokenSigner
	ttl      time.Duration
	clock    domain.Clock
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens TokenSigner, ttl time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		clock:    domain.SystemClock,
		logger:   logger,
	}
}

func (uc *UseCase) WithClock(clock domain.Clock) *UseCase {
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// Issue opens a session for an existing user.
func (uc *UseCase) Issue(ctx context.Context, userID string) (*Issued, error) {
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := uc.clock()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	raw, err := uc.tokens.Sign(userID, session.ID, session.ExpiresAt)
	if err != nil {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, err
	}
	return &Issued{Session: session, Token: raw}, nil
}

// Authenticate verifies a bearer token against the session store. Every
// failure is reported as domain.ErrUnauthorized.
func (uc *UseCase) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	if raw == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := uc.tokens.Parse(raw)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != claims.Subject {
		uc.logger.Warn("token subject does not match session", zap.String("session_id", session.ID))
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(uc.clock()) {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, domain.ErrUnauthorized
	}

	return &Principal{UserID: session.UserID, SessionID: session.ID}, nil
}

// Refresh extends the session and returns a token carrying the new expiry.
func (uc *UseCase) Refresh(ctx context.Context, p Principal) (*Issued, error) {
	if err := uc.sessions.Extend(ctx, p.SessionID, uc.ttl); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	session, err := uc.sessions.Get(ctx, p.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != p.UserID {
		return nil, domain.ErrUnauthorized
	}

	raw, err := uc.tokens.Sign(session.UserID, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &Issued{Session: session, Token: raw}, nil
}

// Revoke ends the session. Revoking an unknown session is not an error.
func (uc *UseCase) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	return nil
}
