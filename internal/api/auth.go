package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iksnae/procrastinator/internal"
)

// Auth endpoint paths
const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	LogoutPath   = "/auth/logout"
	ProfilePath  = "/auth/profile"
)

// AuthService covers login, registration, logout and the profile
type AuthService struct {
	client *Client
	cache  *responseCache
}

// Login validates req, signs in and persists the returned credentials.
func (s *AuthService) Login(ctx context.Context, req internal.LoginRequest) (*internal.AuthResult, error) {
	if err := internal.Validate(req); err != nil {
		return nil, err
	}
	internal.LogDebug("Logging in as %s", internal.RedactEmail(req.Email))
	return s.authenticate(ctx, Request{
		Method:     http.MethodPost,
		Path:       LoginPath,
		Body:       req,
		SkipBearer: true,
		SkipReauth: true,
	})
}

// Register validates req, creates the account and signs in.
func (s *AuthService) Register(ctx context.Context, req internal.RegisterRequest) (*internal.AuthResult, error) {
	if err := internal.Validate(req); err != nil {
		return nil, err
	}
	internal.LogDebug("Registering %s", internal.RedactEmail(req.Email))
	return s.authenticate(ctx, Request{
		Method:     http.MethodPost,
		Path:       RegisterPath,
		Body:       req,
		SkipBearer: true,
		SkipReauth: true,
	})
}

func (s *AuthService) authenticate(ctx context.Context, req Request) (*internal.AuthResult, error) {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Error(req)
	}

	payload := parseAuthPayload(resp.Body)
	if payload.AccessToken == "" {
		return nil, internal.ErrMissingAccessToken
	}

	// Nothing from a previous session may outlive this sign-in.
	store := s.client.Store()
	if err := internal.ClearCredentials(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to clear credentials: %w", err)
	}
	if err := internal.SaveCredentials(ctx, store, payload.result().Tokens, payload.User); err != nil {
		s.abandon(ctx)
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	if payload.User == nil {
		// Older servers omit the user; the profile endpoint has it.
		user, err := s.fetchProfile(ctx, true)
		if err != nil {
			s.abandon(ctx)
			return nil, err
		}
		payload.User = user
	}

	s.client.Session().SetUser(payload.User)
	s.cache.invalidate(internal.TypeTag(internal.TagAuth))
	s.cache.bind(s.client.BaseURL(), payload.User.ID.String())

	result := payload.result()
	return &result, nil
}

// abandon drops a half-finished sign-in.
func (s *AuthService) abandon(ctx context.Context) {
	if err := internal.ClearCredentials(context.WithoutCancel(ctx), s.client.Store()); err != nil {
		internal.LogError("Failed to clear credentials: %v", err)
	}
	s.client.Session().ClearAuth()
}

// Logout ends the session. Credentials, session state and cached data are
// cleared even when the server call fails; that failure is returned so the
// caller can report a local-only logout.
func (s *AuthService) Logout(ctx context.Context) error {
	store := s.client.Store()

	var body interface{}
	if refreshToken, err := store.Get(ctx, internal.KeyRefreshToken); err == nil && refreshToken != "" {
		body = map[string]string{"refreshToken": refreshToken}
	}
	remoteErr := s.client.call(ctx, Request{Method: http.MethodPost, Path: LogoutPath, Body: body}, nil)
	if remoteErr != nil {
		internal.LogWarn("Logout request failed, clearing local session anyway: %v", remoteErr)
	}

	if err := internal.ClearCredentials(context.WithoutCancel(ctx), store); err != nil {
		internal.LogError("Failed to clear credentials: %v", err)
	}
	s.client.Session().ClearAuth()
	s.cache.invalidate(
		internal.TypeTag(internal.TagAuth),
		internal.TypeTag(internal.TagTask),
		internal.TypeTag(internal.TagCategory),
	)

	return remoteErr
}

// Refresh renews the access token on demand.
func (s *AuthService) Refresh(ctx context.Context) error {
	return s.client.Refresh(ctx)
}

// Profile fetches the signed-in user and updates the stored copy.
func (s *AuthService) Profile(ctx context.Context) (*internal.User, error) {
	return s.fetchProfile(ctx, false)
}

// fetchProfile loads the user. While signing in the cache still belongs to
// the previous session, so it is not used as a fallback.
func (s *AuthService) fetchProfile(ctx context.Context, signingIn bool) (*internal.User, error) {
	req := Request{Method: http.MethodGet, Path: ProfilePath, SkipReauth: signingIn}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		var cached internal.User
		if !signingIn && s.cache.fallback(req, &cached, err) {
			return &cached, nil
		}
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Error(req)
	}

	var user internal.User
	if err := decodeEnvelope(resp.Body, "user", &user); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if user.ID == "" && user.Email == "" {
		return nil, fmt.Errorf("profile response has no user")
	}

	if err := internal.SaveUser(ctx, s.client.Store(), &user); err != nil {
		internal.LogWarn("Could not store profile: %v", err)
	}
	s.client.Session().SetUser(&user)
	s.cache.store(req, user, internal.TypeTag(internal.TagAuth))
	return &user, nil
}

// ValidateToken reports whether the server accepts the stored access token.
// It never refreshes.
func (s *AuthService) ValidateToken(ctx context.Context) (bool, error) {
	token, err := s.client.Store().Get(ctx, internal.KeyAccessToken)
	if err != nil || token == "" {
		return false, err
	}
	resp, err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: ProfilePath, SkipReauth: true})
	if err != nil {
		return false, err
	}
	return resp.OK(), nil
}
