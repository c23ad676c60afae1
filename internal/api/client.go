// Package api talks to the Procrastinator HTTP API. Client attaches the
// stored bearer token to every request and transparently recovers from an
// expired access token by refreshing it once and retrying.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/iksnae/procrastinator/internal"
)

// RefreshPath is the token refresh endpoint, relative to the base URL
const RefreshPath = "/auth/refresh"

// RequestIDHeader carries a per-attempt correlation id
const RequestIDHeader = "X-Request-ID"

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Header http.Header

	// SkipBearer sends the request without the stored access token.
	SkipBearer bool
	// SkipReauth returns a 401 as-is instead of refreshing and retrying.
	SkipReauth bool
}

// Response is a completed HTTP exchange. Any status code is a valid Response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v interface{}) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Error builds an APIError for a non-2xx response to req.
func (r *Response) Error(req Request) *internal.APIError {
	return &internal.APIError{
		Method:  req.Method,
		Path:    req.Path,
		Status:  r.StatusCode,
		Message: errorMessage(r.Body),
	}
}

// Client is the authenticated request client
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      internal.CredentialStore
	session    *internal.Session
	refreshes  singleflight.Group
	requestID  func() string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-attempt HTTP timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRequestIDs overrides the request id generator.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) { c.requestID = fn }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, store internal.CredentialStore, session *internal.Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		store:      store,
		session:    session,
		requestID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Store returns the credential store backing the client.
func (c *Client) Store() internal.CredentialStore { return c.store }

// Session returns the session state the client updates.
func (c *Client) Session() *internal.Session { return c.session }

// Do performs req. A 401 is recovered at most once: the stored refresh token
// is exchanged for a new access token and req is retried, and the retry's
// response is returned whatever its status. When recovery is impossible the
// credentials are cleared, the session is logged out and the original 401 is
// returned. The error is non-nil only when no HTTP response was received, and
// is then a *internal.NetworkError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	token := c.accessToken(ctx)

	resp, err := c.attempt(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.SkipReauth {
		return resp, nil
	}

	internal.LogDebug("Access token rejected for %s %s, attempting refresh", req.Method, req.Path)
	fresh, ok := c.recover(ctx, token)
	if !ok {
		return resp, nil
	}

	internal.LogDebug("Retrying %s %s with refreshed token", req.Method, req.Path)
	return c.attempt(ctx, req, fresh)
}

// Refresh exchanges the stored refresh token for a new access token.
// Failure clears the credentials and the session, as an unrecoverable 401 does.
func (c *Client) Refresh(ctx context.Context) error {
	refreshToken, err := c.store.Get(ctx, internal.KeyRefreshToken)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		c.expire(ctx, "no refresh token stored")
		return internal.ErrNoRefreshToken
	}
	_, err = c.sharedRefresh(ctx, refreshToken)
	return err
}

func (c *Client) accessToken(ctx context.Context) string {
	token, err := c.store.Get(ctx, internal.KeyAccessToken)
	if err != nil {
		internal.LogWarn("Could not read access token: %v", err)
		return ""
	}
	return token
}

// recover returns a usable access token after a 401 obtained with stale.
func (c *Client) recover(ctx context.Context, stale string) (string, bool) {
	// Another caller may have refreshed while this request was in flight.
	if current := c.accessToken(ctx); current != "" && current != stale {
		return current, true
	}

	refreshToken, err := c.store.Get(ctx, internal.KeyRefreshToken)
	if err != nil {
		internal.LogWarn("Could not read refresh token: %v", err)
	}
	if refreshToken == "" {
		c.expire(ctx, "no refresh token stored")
		return "", false
	}

	fresh, err := c.sharedRefresh(ctx, refreshToken)
	if err != nil {
		return "", false
	}
	return fresh, true
}

// sharedRefresh runs at most one refresh per refresh token at a time; callers
// arriving while one is in flight share its outcome.
func (c *Client) sharedRefresh(ctx context.Context, refreshToken string) (string, error) {
	v, err, shared := c.refreshes.Do(refreshToken, func() (interface{}, error) {
		return c.refresh(context.WithoutCancel(ctx), refreshToken)
	})
	if shared {
		internal.LogDebug("Joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	req := Request{
		Method:     http.MethodPost,
		Path:       RefreshPath,
		Body:       map[string]string{"refreshToken": refreshToken},
		SkipBearer: true,
		SkipReauth: true,
	}

	resp, err := c.attempt(ctx, req, "")
	if err != nil {
		c.expire(ctx, "refresh request failed")
		return "", err
	}
	if !resp.OK() {
		c.expire(ctx, fmt.Sprintf("refresh rejected with status %d", resp.StatusCode))
		return "", resp.Error(req)
	}

	payload := parseAuthPayload(resp.Body)
	if payload.AccessToken == "" {
		c.expire(ctx, "refresh response has no access token")
		return "", internal.ErrMissingAccessToken
	}

	if err := c.store.Set(ctx, internal.KeyAccessToken, payload.AccessToken); err != nil {
		c.expire(ctx, "could not store refreshed access token")
		return "", err
	}
	if payload.RefreshToken != "" {
		if err := c.store.Set(ctx, internal.KeyRefreshToken, payload.RefreshToken); err != nil {
			internal.LogWarn("Could not store rotated refresh token: %v", err)
		}
	}
	if payload.User != nil {
		if err := internal.SaveUser(ctx, c.store, payload.User); err != nil {
			internal.LogWarn("Could not store refreshed user: %v", err)
		}
		c.session.SetUser(payload.User)
	}

	internal.LogInfo("Access token refreshed (%s)", internal.RedactToken(payload.AccessToken))
	return payload.AccessToken, nil
}

// expire drops every credential and logs the session out.
func (c *Client) expire(ctx context.Context, reason string) {
	internal.LogWarn("Session expired: %s", reason)
	if err := internal.ClearCredentials(context.WithoutCancel(ctx), c.store); err != nil {
		internal.LogError("Failed to clear credentials: %v", err)
	}
	c.session.ClearAuth()
}

// attempt sends req once with token as bearer.
func (c *Client) attempt(ctx context.Context, req Request, token string) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &internal.NetworkError{Method: req.Method, Path: req.Path, Err: fmt.Errorf("failed to encode body: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &internal.NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}

	for k, vv := range req.Header {
		for _, v := range vv {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	requestID := c.requestID()
	httpReq.Header.Set(RequestIDHeader, requestID)
	if token != "" && !req.SkipBearer {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		internal.Logger().Debug().
			Str("method", req.Method).
			Str("path", req.Path).
			Str("request_id", requestID).
			Err(err).
			Msg("api request failed")
		return nil, &internal.NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &internal.NetworkError{Method: req.Method, Path: req.Path, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	internal.Logger().Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Str("request_id", requestID).
		Bool("bearer", token != "" && !req.SkipBearer).
		Dur("duration", time.Since(start)).
		Msg("api request")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}
