package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/oauth"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/repository"
)

// IdentityResolver exchanges an authorization code with a provider.
type IdentityResolver interface {
	Resolve(ctx context.Context, provider domain.Provider, code string) (*oauth.Profile, error)
}

// UseCase registers and authenticates users.
type UseCase struct {
	users      repository.UserRepository
	hasher     password.Hasher
	identities IdentityResolver
	clock      domain.Clock
	logger     *zap.Logger
}

func New(users repository.UserRepository, hasher password.Hasher, identities IdentityResolver, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:      users,
		hasher:     hasher,
		identities: identities,
		clock:      domain.SystemClock,
		logger:     logger,
	}
}

// WithClock replaces the time source used for created_at/updated_at.
func (uc *UseCase) WithClock(clock domain.Clock) *UseCase {
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// Register creates a local account. Email collisions, including ones lost
// to a concurrent registration, yield domain.ErrEmailTaken.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.AuthUser, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := uc.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        in.Email,
		Name:         domain.StringPtr(in.Name),
		PasswordHash: &hash,
		Provider:     domain.ProviderEmail,
	}
	user.Touch(uc.clock())

	if err := uc.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user.Sanitize(), nil
}

// Login checks a local password. Unknown emails and wrong passwords are
// reported identically; accounts without a password get ErrNoPasswordSet.
func (uc *UseCase) Login(ctx context.Context, in LoginInput) (*domain.AuthUser, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := uc.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		uc.logger.Info("password login refused for social account", zap.String("user_id", user.ID))
		return nil, domain.ErrNoPasswordSet
	}
	if !uc.hasher.Verify(in.Password, *user.PasswordHash) {
		uc.logger.Info("password login failed", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	return user.Sanitize(), nil
}

// OAuth signs a user in with an external provider. The provider identity
// is the upsert key: a known identity gets its name and avatar refreshed,
// an unknown one creates a new password-less account. Existing local
// accounts with the same email are not merged.
func (uc *UseCase) OAuth(ctx context.Context, in OAuthInput) (*domain.AuthUser, error) {
	provider, err := domain.ParseOAuthProvider(in.Provider)
	if err != nil {
		return nil, err
	}

	profile, err := uc.identities.Resolve(ctx, provider, in.Code)
	if err != nil {
		uc.logger.Info("oauth code exchange failed", zap.String("provider", string(provider)), zap.Error(err))
		return nil, err
	}

	existing, err := uc.users.FindByProviderID(ctx, profile.ExternalID)
	switch {
	case err == nil:
		existing.Name = domain.StringPtr(profile.Name)
		existing.AvatarURL = domain.StringPtr(profile.AvatarURL)
		existing.Touch(uc.clock())
		if err := uc.users.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing.Sanitize(), nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	if err := validateEmail(profile.Email); err != nil {
		return nil, err
	}

	externalID := profile.ExternalID
	user := &domain.User{
		Email:      profile.Email,
		Name:       domain.StringPtr(profile.Name),
		AvatarURL:  domain.StringPtr(profile.AvatarURL),
		Provider:   provider,
		ProviderID: &externalID,
	}
	user.Touch(uc.clock())

	if err := uc.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user created from oauth identity", zap.String("user_id", user.ID), zap.String("provider", string(provider)))
	return user.Sanitize(), nil
}

// CurrentUser returns the sanitized user behind an authenticated subject.
func (uc *UseCase) CurrentUser(ctx context.Context, userID string) (*domain.AuthUser, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}
