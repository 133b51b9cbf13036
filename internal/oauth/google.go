package oauth

import (
	"context"
	"net/url"

	"github.com/fastygo/taskboard/domain"
)

// GoogleEndpoints can be overridden in tests.
type GoogleEndpoints struct {
	TokenURL    string
	UserInfoURL string
}

var DefaultGoogleEndpoints = GoogleEndpoints{
	TokenURL:    "https://oauth2.googleapis.com/token",
	UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
}

type googleToken struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}

type googleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Google resolves Google authorization codes.
type Google struct {
	creds     Credentials
	endpoints GoogleEndpoints
	http      httpClient
}

// NewGoogle builds the provider. A nil doer uses a default fasthttp client.
func NewGoogle(creds Credentials, endpoints GoogleEndpoints, doer Doer) *Google {
	if endpoints.TokenURL == "" {
		endpoints = DefaultGoogleEndpoints
	}
	return &Google{creds: creds, endpoints: endpoints, http: newHTTPClient(doer)}
}

func (g *Google) Resolve(ctx context.Context, code string) (*Profile, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", g.creds.ClientID)
	form.Set("client_secret", g.creds.ClientSecret)
	form.Set("redirect_uri", g.creds.RedirectURL)
	form.Set("grant_type", "authorization_code")

	var tok googleToken
	if err := g.http.exchange(ctx, g.endpoints.TokenURL, form, &tok); err != nil {
		return nil, err
	}
	if tok.Error != "" || tok.AccessToken == "" {
		return nil, domain.ErrInvalidAuthorizationCode
	}

	var user googleUser
	if err := g.http.getJSON(ctx, g.endpoints.UserInfoURL, tok.AccessToken, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, domain.ErrInvalidAuthorizationCode
	}

	return &Profile{
		ExternalID: string(domain.ProviderGoogle) + "_" + user.ID,
		Email:      user.Email,
		Name:       user.Name,
		AvatarURL:  user.Picture,
	}, nil
}
