package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/procrastinator/internal"
	"github.com/iksnae/procrastinator/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cli runs rootCmd against a fake API with an isolated home directory.
type cli struct {
	api   *testutil.FakeAPI
	dir   string
	creds string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(internal.ConfigPathEnv, "")
	t.Setenv("PROCRASTINATOR_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("PROCRASTINATOR_CREDENTIALS", "")
	t.Setenv("PROCRASTINATOR_API_URL", "")
	return &cli{
		api:   testutil.NewFakeAPI(t),
		dir:   dir,
		creds: filepath.Join(dir, "credentials.db"),
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (c *cli) run(t *testing.T, args ...string) result {
	t.Helper()
	return c.runWithInput(t, "", args...)
}

func (c *cli) runWithInput(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(append([]string{"--api-url", c.api.URL(), "--credentials", c.creds}, args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// login signs in a fresh account and returns it.
func (c *cli) login(t *testing.T) testutil.FakeUser {
	t.Helper()
	user := c.api.AddUser("ada@example.com", "secret123", "Ada Lovelace")
	res := c.run(t, "login", "--email", user.Email, "--password", "secret123")
	require.NoError(t, res.err, res.stderr)
	return user
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    string
	}{
		{name: "version flag", args: []string{"--version"}, want: version},
		{name: "help flag", args: []string{"--help"}, want: "Procrastinator"},
		{name: "unknown command", args: []string{"nonexistent-command"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(rootCmd)
			rootCmd.SetArgs(tt.args)
			var stdout bytes.Buffer
			rootCmd.SetOut(&stdout)
			rootCmd.SetErr(&bytes.Buffer{})

			err := rootCmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" {
				assert.Contains(t, stdout.String(), tt.want)
			}
		})
	}
}

func TestRootCommand_InvalidAPIURL(t *testing.T) {
	c := newCLI(t)
	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"--api-url", "not a url", "--credentials", c.creds, "token", "info"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
}

func TestLoginThenListTasks(t *testing.T) {
	c := newCLI(t)
	user := c.login(t)
	c.api.AddTask(user.ID, "Water the plants", "pending", nil)
	c.api.AddTask(user.ID, "File taxes", "completed", nil)

	res := c.run(t, "tasks", "list")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Water the plants")
	assert.Contains(t, res.stdout, "File taxes")

	reqs := c.api.RequestsTo("GET", "/tasks")
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasPrefix(reqs[0].Authorization, "Bearer "))
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestLoginPasswordFromStdin(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("ada@example.com", "secret123", "Ada Lovelace")

	res := c.runWithInput(t, "secret123\n", "login", "--email", "ada@example.com")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Logged In")
}

func TestLoginWrongPassword(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("ada@example.com", "secret123", "Ada Lovelace")

	res := c.run(t, "login", "--email", "ada@example.com", "--password", "nope")
	require.Error(t, res.err)

	var reported *reportedError
	assert.True(t, errors.As(res.err, &reported))
	assert.Contains(t, res.stderr, "Invalid credentials. Please try again.")

	res = c.run(t, "tasks", "list")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "Not Logged In")
}

func TestCommandsRequireLogin(t *testing.T) {
	commands := [][]string{
		{"tasks", "list"},
		{"tasks", "show", "1"},
		{"tasks", "create", "--title", "x"},
		{"tasks", "export"},
		{"categories", "list"},
		{"profile"},
		{"token", "refresh"},
	}

	for _, args := range commands {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			c := newCLI(t)
			res := c.run(t, args...)
			require.Error(t, res.err)
			assert.ErrorIs(t, res.err, internal.ErrNotAuthenticated)
			assert.Contains(t, res.stderr, "Please log in to continue")
			assert.Empty(t, c.api.Requests())
		})
	}
}

func TestLogout(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	res := c.run(t, "logout")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Logged Out Successfully")
	assert.Len(t, c.api.RequestsTo("POST", "/auth/logout"), 1)

	res = c.run(t, "profile")
	require.Error(t, res.err)

	res = c.run(t, "logout")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Not logged in")
}

func TestLogoutWhenServerFails(t *testing.T) {
	c := newCLI(t)
	c.login(t)
	c.api.FailLogout(500)

	res := c.run(t, "logout")
	require.NoError(t, res.err)

	res = c.run(t, "token", "info")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "stored")
}

func TestProfile(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	res := c.run(t, "profile")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Ada Lovelace")
	assert.Contains(t, res.stdout, "ada@example.com")
	assert.Empty(t, c.api.RequestsTo("GET", "/auth/profile"))

	res = c.run(t, "profile", "--remote")
	require.NoError(t, res.err, res.stderr)
	assert.Len(t, c.api.RequestsTo("GET", "/auth/profile"), 1)
}

func TestRegister(t *testing.T) {
	c := newCLI(t)

	res := c.run(t, "register", "--name", "Grace Hopper", "--email", "grace@example.com", "--password", "cobol1959")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Account created successfully")

	res = c.run(t, "profile")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Grace Hopper")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	c := newCLI(t)

	res := c.run(t, "register", "--name", "Grace Hopper", "--email", "grace@example.com",
		"--password", "cobol1959", "--confirm-password", "fortran")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "Passwords must match")
	assert.Empty(t, c.api.Requests())
}

func TestSessionSurvivesTokenExpiry(t *testing.T) {
	c := newCLI(t)
	user := c.login(t)
	c.api.AddTask(user.ID, "Renew passport", "pending", nil)
	c.api.ExpireAccessTokens()

	res := c.run(t, "tasks", "list")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Renew passport")
	assert.Equal(t, 1, c.api.RefreshCalls())
}

func TestSessionEndsWhenRefreshIsRevoked(t *testing.T) {
	c := newCLI(t)
	c.login(t)
	c.api.ExpireAccessTokens()
	c.api.RevokeRefreshTokens()

	res := c.run(t, "tasks", "list")
	require.Error(t, res.err)

	res = c.run(t, "profile")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, internal.ErrNotAuthenticated)
}

func TestPasswordFrom(t *testing.T) {
	tests := []struct {
		name string
		in   string
		flag string
		want string
	}{
		{name: "flag wins", in: "ignored\n", flag: "secret", want: "secret"},
		{name: "first line", in: "secret\nrest\n", want: "secret"},
		{name: "windows newline", in: "secret\r\n", want: "secret"},
		{name: "no newline", in: "secret", want: "secret"},
		{name: "empty input", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := passwordFrom(strings.NewReader(tt.in), tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
