package oauth

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// RejectedFixtureCode is always refused by Fixture providers.
const RejectedFixtureCode = "invalid_code"

// Fixture resolves codes without network access. Codes listed in Codes map
// to their own profile; any other accepted code maps to Default.
type Fixture struct {
	Default Profile
	Codes   map[string]Profile
}

func (f *Fixture) Resolve(ctx context.Context, code string) (*Profile, error) {
	if code == "" || code == RejectedFixtureCode {
		return nil, domain.ErrInvalidAuthorizationCode
	}
	if p, ok := f.Codes[code]; ok {
		return &p, nil
	}
	if f.Default.ExternalID == "" {
		return nil, domain.ErrInvalidAuthorizationCode
	}
	p := f.Default
	return &p, nil
}

// FixtureRegistry returns a registry with offline Google and GitHub
// providers, for development without provider credentials.
func FixtureRegistry() *Registry {
	return NewRegistry().
		Register(domain.ProviderGoogle, &Fixture{Default: Profile{
			ExternalID: "google_123456789",
			Email:      "user@gmail.com",
			Name:       "Google User",
			AvatarURL:  "https://lh3.googleusercontent.com/a/default-user",
		}}).
		Register(domain.ProviderGitHub, &Fixture{Default: Profile{
			ExternalID: "github_987654321",
			Email:      "user@github.com",
			Name:       "GitHub User",
			AvatarURL:  "https://avatars.githubusercontent.com/u/123456?v=4",
		}})
}
