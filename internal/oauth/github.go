package oauth

import (
	"context"
	"net/url"
	"strconv"

	"github.com/fastygo/taskboard/domain"
)

type GitHubEndpoints struct {
	TokenURL  string
	UserURL   string
	EmailsURL string
}

var DefaultGitHubEndpoints = GitHubEndpoints{
	TokenURL:  "https://github.com/login/oauth/access_token",
	UserURL:   "https://api.github.com/user",
	EmailsURL: "https://api.github.com/user/emails",
}

type githubToken struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GitHub resolves GitHub authorization codes. GitHub answers a bad code
// with 200 and an "error" field, which is treated like a 4xx.
type GitHub struct {
	creds     Credentials
	endpoints GitHubEndpoints
	http      httpClient
}

func NewGitHub(creds Credentials, endpoints GitHubEndpoints, doer Doer) *GitHub {
	if endpoints.TokenURL == "" {
		endpoints = DefaultGitHubEndpoints
	}
	return &GitHub{creds: creds, endpoints: endpoints, http: newHTTPClient(doer)}
}

func (g *GitHub) Resolve(ctx context.Context, code string) (*Profile, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", g.creds.ClientID)
	form.Set("client_secret", g.creds.ClientSecret)
	if g.creds.RedirectURL != "" {
		form.Set("redirect_uri", g.creds.RedirectURL)
	}

	var tok githubToken
	if err := g.http.exchange(ctx, g.endpoints.TokenURL, form, &tok); err != nil {
		return nil, err
	}
	if tok.Error != "" || tok.AccessToken == "" {
		return nil, domain.ErrInvalidAuthorizationCode
	}

	var user githubUser
	if err := g.http.getJSON(ctx, g.endpoints.UserURL, tok.AccessToken, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, domain.ErrInvalidAuthorizationCode
	}

	email := user.Email
	if email == "" {
		// private address: fall back to the primary verified one
		var emails []githubEmail
		if err := g.http.getJSON(ctx, g.endpoints.EmailsURL, tok.AccessToken, &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &Profile{
		ExternalID: string(domain.ProviderGitHub) + "_" + strconv.FormatInt(user.ID, 10),
		Email:      email,
		Name:       name,
		AvatarURL:  user.AvatarURL,
	}, nil
}
