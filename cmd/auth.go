package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/procrastinator/internal"
	"github.com/spf13/cobra"
)

var (
	loginEmail      string
	loginPassword   string
	registerName    string
	registerEmail   string
	registerPass    string
	registerConfirm string
	profileRemote   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in with your email and password. The access token, refresh token and
user are stored in the credential database so later commands run signed in.

When --password is omitted the password is read from the first line of stdin.`,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		password, err := passwordFrom(cmd.InOrStdin(), loginPassword)
		if err != nil {
			return err
		}

		req := internal.LoginRequest{Email: strings.TrimSpace(loginEmail), Password: password}
		err = a.run(cmd.Context(), "Signing in", func() error {
			_, err := a.services.Auth.Login(cmd.Context(), req)
			return err
		})
		return a.report(internal.ActionLogin, err)
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		password, err := passwordFrom(cmd.InOrStdin(), registerPass)
		if err != nil {
			return err
		}
		confirm := registerConfirm
		if !cmd.Flags().Changed("confirm-password") {
			confirm = password
		}

		req := internal.RegisterRequest{
			Name:            strings.TrimSpace(registerName),
			Email:           strings.TrimSpace(registerEmail),
			Password:        password,
			ConfirmPassword: confirm,
		}
		err = a.run(cmd.Context(), "Creating account", func() error {
			_, err := a.services.Auth.Register(cmd.Context(), req)
			return err
		})
		return a.report(internal.ActionRegister, err)
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Long: `Sign out on the server and remove every stored credential. The local
session is cleared even when the server cannot be reached.`,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if !a.session.IsAuthenticated() {
			a.printer.Info("Not logged in")
			return nil
		}
		err := a.run(cmd.Context(), "Signing out", func() error {
			return a.services.Auth.Logout(cmd.Context())
		})
		// the local session is gone either way
		a.printer.Notify(internal.NotificationFor(internal.ActionLogout, err))
		return nil
	}),
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user",
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		user := a.session.User()
		if profileRemote {
			err := a.run(cmd.Context(), "Loading profile", func() error {
				u, err := a.services.Auth.Profile(cmd.Context())
				if err == nil {
					user = u
				}
				return err
			})
			if err != nil {
				return a.report(internal.ActionLoad, err)
			}
		}
		renderUser(cmd.OutOrStdout(), user)
		return nil
	}),
}

// passwordFrom returns flag, or the first line of in when flag is empty.
func passwordFrom(in io.Reader, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, profileCmd)

	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (read from stdin when omitted)")

	registerCmd.Flags().StringVarP(&registerName, "name", "n", "", "Full name")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&registerPass, "password", "p", "", "Password (read from stdin when omitted)")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm-password", "", "Password confirmation (defaults to --password)")

	profileCmd.Flags().BoolVar(&profileRemote, "remote", false, "Fetch the profile from the server")
}
