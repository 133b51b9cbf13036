package domain

import "time"

// Provider names the identity source a user signed up with.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// ParseOAuthProvider accepts only the external providers. The local
// "email" provider is rejected since it has no authorization code flow.
func ParseOAuthProvider(raw string) (Provider, error) {
	switch p := Provider(raw); p {
	case ProviderGoogle, ProviderGitHub:
		return p, nil
	default:
		return "", ErrUnsupportedProvider
	}
}

// User represents an authenticated identity in the platform.
// PasswordHash is set only for local accounts; ProviderID only for OAuth ones.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	AvatarURL    *string   `json:"avatar_url"`
	PasswordHash *string   `json:"-"`
	Provider     Provider  `json:"-"`
	ProviderID   *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the user can sign in with a local password.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != ""
}

// Touch stamps the record with now, keeping created_at fixed once set and
// updated_at strictly increasing.
func (u *User) Touch(now time.Time) {
	if u == nil {
		return
	}
	u.UpdatedAt = NextTimestamp(u.UpdatedAt, now)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = u.UpdatedAt
	}
}

// Sanitize returns the public view of the user.
func (u *User) Sanitize() *AuthUser {
	if u == nil {
		return nil
	}
	return &AuthUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

// AuthUser is the user view returned to callers. It never carries
// credentials or provider linkage.
type AuthUser struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
