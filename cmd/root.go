package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/iksnae/procrastinator/internal"
	"github.com/spf13/cobra"
)

var (
	verbose         bool
	configPath      string
	apiURL          string
	credentialsPath string
	noCache         bool
	version         string = "dev"
	commit          string = "unknown"
	date            string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "procrastinator",
	Short: "Manage your Procrastinator tasks from the terminal",
	Long: `A command-line client for the Procrastinator to-do API.

Sign in once and the session is kept on disk. Expired access tokens are
renewed automatically with the stored refresh token; when that is no longer
possible you are signed out and asked to log in again.

Quick Start:
  procrastinator login --email you@example.com
  procrastinator tasks list --status pending
  procrastinator tasks create --title "Water the plants" --due 2030-01-31
  procrastinator categories list
  procrastinator status`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// reportedError marks a failure whose notification was already shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./procrastinator.yaml or $PROCRASTINATOR_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL, e.g. http://localhost:3000/api")
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "", "Credential database path (default ~/.procrastinator/credentials.db)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Disable the response cache")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
