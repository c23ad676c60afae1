package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/procrastinator/internal"
	"github.com/iksnae/procrastinator/internal/api"
	"github.com/spf13/cobra"
)

// app holds everything a command needs once startup validation has run
type app struct {
	cfg      *internal.Config
	store    *internal.SQLiteStore
	session  *internal.Session
	cache    *internal.ResponseCache
	client   *api.Client
	services *api.Services
	printer  *internal.Printer
}

// newApp loads configuration, opens the credential store and decides the
// initial session from what is stored there.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := internal.LoadConfig(configPath, internal.Overrides{
		APIURL:      apiURL,
		Credentials: credentialsPath,
		NoCache:     noCache,
	})
	if err != nil {
		return nil, err
	}
	configureLogging(cmd, cfg)

	store, err := internal.OpenCredentialStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	session := internal.NewSession()
	var cache *internal.ResponseCache
	if !cfg.Cache.Disabled {
		cache = internal.NewResponseCache(cfg.Cache.Dir)
	}
	client := api.NewClient(cfg.BaseURL(), store, session, api.WithTimeout(cfg.API.Timeout))

	a := &app{
		cfg:      cfg,
		store:    store,
		session:  session,
		cache:    cache,
		client:   client,
		services: api.NewServices(client, cache),
		printer:  internal.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}
	session.Subscribe(a.onSessionChange)

	state := api.Bootstrap(cmd.Context(), client, api.BootstrapOptions{
		Timeout: cfg.Startup.Timeout,
		Probe:   cfg.Startup.Probe,
	})
	if state.IsAuthenticated && cache != nil {
		if err := cache.Bind(cfg.BaseURL(), state.User.ID.String()); err != nil {
			internal.LogWarn("Failed to bind cache: %v", err)
		}
	}
	internal.LogDebug("Session initialized (authenticated=%t)", state.IsAuthenticated)

	return a, nil
}

func configureLogging(cmd *cobra.Command, cfg *internal.Config) {
	internal.SetLogOutput(cmd.ErrOrStderr(), cfg.Log.Format)
	if verbose {
		internal.SetLogLevel(internal.LogLevelDebug)
		return
	}
	internal.SetLogLevel(internal.ParseLogLevel(cfg.Log.Level))
}

// onSessionChange drops cached user data whenever the session ends,
// including an expiry detected mid-request.
func (a *app) onSessionChange(state internal.SessionState) {
	if state.IsAuthenticated || a.cache == nil {
		return
	}
	if _, err := a.cache.Invalidate(
		internal.TypeTag(internal.TagAuth),
		internal.TypeTag(internal.TagTask),
		internal.TypeTag(internal.TagCategory),
	); err != nil {
		internal.LogWarn("Failed to invalidate cache: %v", err)
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		internal.LogWarn("Failed to close credential store: %v", err)
	}
}

// requireAuth fails commands that need a signed-in user.
func (a *app) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return a.report(internal.ActionLoad, internal.ErrNotAuthenticated)
	}
	return nil
}

// report shows the notification for action and err. A nil err reports success.
func (a *app) report(action internal.Action, err error) error {
	a.printer.Notify(internal.NotificationFor(action, err))
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// run executes fn behind a spinner.
func (a *app) run(ctx context.Context, message string, fn func() error) error {
	return a.printer.Spin(ctx, message, fn)
}

// withApp adapts a command body that needs an app.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// withSession is withApp for commands that require a signed-in user.
func withSession(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireAuth(); err != nil {
			return err
		}
		return fn(cmd, a, args)
	})
}
