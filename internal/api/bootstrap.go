package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/iksnae/procrastinator/internal"
)

// DefaultStartupTimeout bounds startup validation when no timeout is configured
const DefaultStartupTimeout = 5 * time.Second

// BootstrapOptions tunes startup validation
type BootstrapOptions struct {
	// Timeout forces a logged-out session if validation has not resolved.
	Timeout time.Duration
	// Probe checks the stored session against the profile endpoint.
	Probe bool
}

// Bootstrap decides the initial session from the stored credentials and
// returns the resulting state. The session is initialized exactly once:
// by the stored credentials, by their absence, or by the timeout.
func Bootstrap(ctx context.Context, client *Client, opts BootstrapOptions) internal.SessionState {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultStartupTimeout
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := &bootstrap{client: client}
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.run(runCtx, opts.Probe)
	}()

	timer := time.NewTimer(opts.Timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		if b.resolve(nil) {
			internal.LogWarn("Session validation timed out after %s, continuing logged out", opts.Timeout)
		}
	case <-ctx.Done():
		b.resolve(nil)
	}

	return client.Session().State()
}

type bootstrap struct {
	client *Client
	once   sync.Once
}

// resolve applies the first outcome only. A nil user logs the session out.
func (b *bootstrap) resolve(user *internal.User) bool {
	won := false
	b.once.Do(func() {
		won = true
		if user == nil {
			b.client.Session().ClearAuth()
			return
		}
		b.client.Session().SetUser(user)
	})
	return won
}

func (b *bootstrap) run(ctx context.Context, probe bool) {
	store := b.client.Store()

	user, err := internal.LoadUser(ctx, store)
	if err != nil {
		internal.LogWarn("Stored user unreadable: %v", err)
		user = nil
	}
	token, err := store.Get(ctx, internal.KeyAccessToken)
	if err != nil {
		internal.LogWarn("Could not read access token: %v", err)
		token = ""
	}

	if user == nil || token == "" {
		if !b.resolve(nil) {
			return
		}
		internal.LogDebug("No stored session")
		if err := internal.ClearCredentials(context.WithoutCancel(ctx), store); err != nil {
			internal.LogError("Failed to clear credentials: %v", err)
		}
		return
	}

	if !b.resolve(user) {
		return
	}
	internal.LogDebug("Restored session for %s", internal.RedactEmail(user.Email))

	if probe {
		b.probe(ctx)
	}
}

// probe refreshes the stored user from the profile endpoint. Any failure,
// a 401 included, leaves the restored session alone; the first real request
// recovers or expires it.
func (b *bootstrap) probe(ctx context.Context) {
	resp, err := b.client.Do(ctx, Request{Method: http.MethodGet, Path: ProfilePath, SkipReauth: true})
	if err != nil {
		internal.LogInfo("Profile probe failed, keeping stored session: %v", err)
		return
	}
	if !resp.OK() {
		internal.LogDebug("Profile probe returned %d, keeping stored session", resp.StatusCode)
		return
	}

	var user internal.User
	if err := decodeEnvelope(resp.Body, "user", &user); err != nil || user.ID == "" {
		internal.LogDebug("Profile probe returned no user")
		return
	}
	if err := internal.SaveUser(ctx, b.client.Store(), &user); err != nil {
		internal.LogWarn("Could not store profile: %v", err)
	}
	b.client.Session().SetUser(&user)
}
