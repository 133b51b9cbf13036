package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskboard/domain"
)

const defaultTimeout = 10 * time.Second

// Credentials identify this application to a provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Doer is the subset of *fasthttp.Client used for provider calls.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

type httpClient struct {
	doer    Doer
	timeout time.Duration
}

func newHTTPClient(doer Doer) httpClient {
	if doer == nil {
		doer = &fasthttp.Client{
			Name:                "taskboard-oauth",
			ReadTimeout:         defaultTimeout,
			WriteTimeout:        defaultTimeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	return httpClient{doer: doer, timeout: defaultTimeout}
}

// exchange posts the authorization code to a token endpoint and decodes the
// JSON answer into out. 4xx answers mean the provider refused the code.
func (c httpClient) exchange(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBodyString(form.Encode())

	if err := c.do(ctx, req, resp); err != nil {
		return err
	}

	status := resp.StatusCode()
	switch {
	case status >= 400 && status < 500:
		return domain.ErrInvalidAuthorizationCode
	case status != fasthttp.StatusOK:
		return fmt.Errorf("oauth: token endpoint returned %d", status)
	}
	return json.Unmarshal(resp.Body(), out)
}

// getJSON performs an authenticated GET and decodes the JSON body.
func (c httpClient) getJSON(ctx context.Context, endpoint, accessToken string, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent("taskboard-oauth")

	if err := c.do(ctx, req, resp); err != nil {
		return err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("oauth: %s returned %d: %s", endpoint, resp.StatusCode(), resp.Body())
	}
	return json.Unmarshal(resp.Body(), out)
}

func (c httpClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.doer.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("oauth: request %s: %w", req.URI().String(), err)
	}
	return nil
}
