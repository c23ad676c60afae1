package cmd

import (
	"fmt"
	"time"

	"github.com/iksnae/procrastinator/internal"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect and manage the stored tokens",
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show which tokens are stored and when the access token expires",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		info, err := internal.InspectTokens(cmd.Context(), a.store, time.Now())
		if err != nil {
			return fmt.Errorf("failed to read tokens: %w", err)
		}
		renderTokenInfo(cmd, info, time.Now())
		return nil
	}),
}

var tokenRefreshIfExpired bool

var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token now",
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		if tokenRefreshIfExpired {
			access, err := a.store.Get(cmd.Context(), internal.KeyAccessToken)
			if err != nil {
				return fmt.Errorf("failed to read tokens: %w", err)
			}
			if !internal.TokenExpired(access, time.Now()) {
				a.printer.Info("Access token is still valid; not refreshed")
				return nil
			}
		}
		err := a.run(cmd.Context(), "Refreshing session", func() error {
			return a.services.Auth.Refresh(cmd.Context())
		})
		return a.report(internal.ActionRefresh, err)
	}),
}

var tokenValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Ask the server whether the stored access token is accepted",
	Long: `Ask the server whether the stored access token is accepted. This never
refreshes the token; use 'procrastinator token refresh' for that.`,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		var valid bool
		err := a.run(cmd.Context(), "Validating token", func() error {
			var err error
			valid, err = a.services.Auth.ValidateToken(cmd.Context())
			return err
		})
		if err != nil {
			return a.report(internal.ActionLoad, err)
		}
		if valid {
			a.printer.Success("Access token is valid")
			return nil
		}
		a.printer.Warning("Access token is missing or rejected")
		return &reportedError{err: fmt.Errorf("access token is not valid")}
	}),
}

func renderTokenInfo(cmd *cobra.Command, info internal.TokenInfo, now time.Time) {
	out := cmd.OutOrStdout()
	yesNo := func(ok bool) string {
		if ok {
			return okStyle.Render("stored")
		}
		return warnStyle.Render("missing")
	}
	_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Access token: "), yesNo(info.HasAccessToken))
	_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Refresh token:"), yesNo(info.HasRefreshToken))

	switch {
	case info.AccessTokenExpiry == nil:
		if info.HasAccessToken {
			_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Expires:      "), dateStyle.Render("unknown"))
		}
	case info.IsExpired:
		_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Expires:      "),
			failStyle.Render(fmt.Sprintf("expired %s ago", now.Sub(*info.AccessTokenExpiry).Round(time.Second))))
	default:
		_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Expires:      "),
			okStyle.Render(fmt.Sprintf("in %s (%s)", info.AccessTokenExpiry.Sub(now).Round(time.Second), info.AccessTokenExpiry.Local().Format(time.RFC3339))))
	}
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenInfoCmd, tokenRefreshCmd, tokenValidateCmd)

	tokenRefreshCmd.Flags().BoolVar(&tokenRefreshIfExpired, "if-expired", false, "Only refresh when the access token is expired or unreadable")
}
