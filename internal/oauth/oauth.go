// Package oauth exchanges provider authorization codes for external
// identities. Linking those identities to local users happens in the auth
// use case.
package oauth

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// Profile is the normalized identity returned by a provider.
// ExternalID is namespaced by provider, e.g. "google_123".
type Profile struct {
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
}

// Provider resolves an authorization code. Codes the provider refuses
// yield domain.ErrInvalidAuthorizationCode.
type Provider interface {
	Resolve(ctx context.Context, code string) (*Profile, error)
}

// Registry dispatches to the provider configured for a name.
type Registry struct {
	providers map[domain.Provider]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[domain.Provider]Provider)}
}

// Register binds p to name, replacing any previous binding.
func (r *Registry) Register(name domain.Provider, p Provider) *Registry {
	if p != nil {
		r.providers[name] = p
	}
	return r
}

// Resolve looks up the provider and exchanges code. Unknown or unconfigured
// providers yield domain.ErrUnsupportedProvider.
func (r *Registry) Resolve(ctx context.Context, provider domain.Provider, code string) (*Profile, error) {
	p, ok := r.providers[provider]
	if !ok {
		return nil, domain.ErrUnsupportedProvider
	}
	if code == "" {
		return nil, domain.ErrInvalidAuthorizationCode
	}
	return p.Resolve(ctx, code)
}

// LiveRegistry registers the real providers that have a client id.
func LiveRegistry(google, github Credentials, doer Doer) *Registry {
	r := NewRegistry()
	if google.ClientID != "" {
		r.Register(domain.ProviderGoogle, NewGoogle(google, DefaultGoogleEndpoints, doer))
	}
	if github.ClientID != "" {
		r.Register(domain.ProviderGitHub, NewGitHub(github, DefaultGitHubEndpoints, doer))
	}
	return r
}
