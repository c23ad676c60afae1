package cmd

import (
	"fmt"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/iksnae/procrastinator/internal"
	"github.com/spf13/cobra"
)

var (
	statusCheckServer bool
)

// statusCmd reports configuration, session and connectivity
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, session and server status",
	Long: `Show what the client is configured with and whether it is signed in:
  • Configuration (API URL, credential database, cache)
  • Stored session and token expiry
  • Optionally, whether the server accepts the stored access token`,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		out := cmd.OutOrStdout()
		now := time.Now()

		_, _ = fmt.Fprintln(out, figure.NewFigure("procrastinator", "small", true).String())

		_, _ = fmt.Fprintln(out, sectionStyle.Render("Configuration"))
		_, _ = fmt.Fprintf(out, "   Environment:  %s\n", a.cfg.Env)
		_, _ = fmt.Fprintf(out, "   API:          %s\n", a.cfg.BaseURL())
		_, _ = fmt.Fprintf(out, "   Credentials:  %s\n", a.cfg.Storage.Path)
		if a.cache == nil {
			_, _ = fmt.Fprintf(out, "   Cache:        %s\n", warnStyle.Render("disabled"))
		} else {
			_, _ = fmt.Fprintf(out, "   Cache:        %s (%d entries)\n", a.cache.GetCacheDir(), a.cache.Len())
		}
		_, _ = fmt.Fprintln(out)

		_, _ = fmt.Fprintln(out, sectionStyle.Render("Session"))
		state := a.session.State()
		if state.IsAuthenticated {
			_, _ = fmt.Fprintf(out, "   %s %s <%s>\n", okStyle.Render("✅ Signed in as"), state.User.Name, state.User.Email)
		} else {
			_, _ = fmt.Fprintf(out, "   %s\n", warnStyle.Render("⚠️  Not signed in"))
		}
		info, err := internal.InspectTokens(cmd.Context(), a.store, now)
		if err != nil {
			_, _ = fmt.Fprintf(out, "   %s %v\n", failStyle.Render("❌ Failed to read tokens:"), err)
		} else {
			switch {
			case !info.HasAccessToken:
			case info.AccessTokenExpiry == nil:
				_, _ = fmt.Fprintf(out, "   Access token expiry unknown\n")
			case info.IsExpired:
				_, _ = fmt.Fprintf(out, "   %s\n", warnStyle.Render("Access token expired; it will be refreshed on the next request"))
			default:
				_, _ = fmt.Fprintf(out, "   Access token valid for %s\n", info.AccessTokenExpiry.Sub(now).Round(time.Second))
			}
			if info.HasAccessToken && !info.HasRefreshToken {
				_, _ = fmt.Fprintf(out, "   %s\n", warnStyle.Render("No refresh token stored"))
			}
		}
		_, _ = fmt.Fprintln(out)

		if !statusCheckServer {
			return nil
		}

		_, _ = fmt.Fprintln(out, sectionStyle.Render("Server"))
		valid, err := a.services.Auth.ValidateToken(cmd.Context())
		switch {
		case err != nil:
			_, _ = fmt.Fprintf(out, "   %s %v\n", failStyle.Render("❌ Unreachable:"), err)
			return &reportedError{err: err}
		case !state.IsAuthenticated:
			_, _ = fmt.Fprintf(out, "   %s\n", okStyle.Render("✅ Reachable"))
		case valid:
			_, _ = fmt.Fprintf(out, "   %s\n", okStyle.Render("✅ Reachable, access token accepted"))
		default:
			_, _ = fmt.Fprintf(out, "   %s\n", warnStyle.Render("⚠️  Reachable, access token rejected"))
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusCheckServer, "check-server", false, "Contact the server to validate the stored token")
}
