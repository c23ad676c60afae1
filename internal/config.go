package internal

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigFile is read from the working directory when no path is given
const DefaultConfigFile = "procrastinator.yaml"

// ConfigPathEnv names the environment variable holding a config file path
const ConfigPathEnv = "PROCRASTINATOR_CONFIG"

// Config is the client configuration.
// Sources, highest priority first:
//  1. the path passed to LoadConfig (the --config flag);
//  2. PROCRASTINATOR_CONFIG;
//  3. ./procrastinator.yaml;
//  4. environment variables only.
//
// Environment variables override values read from a file.
type Config struct {
	Env     string        `yaml:"env" env:"PROCRASTINATOR_ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Startup StartupConfig `yaml:"startup"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig points the client at the remote API
type APIConfig struct {
	BaseURL string `yaml:"base_url" env:"PROCRASTINATOR_API_URL" env-default:"http://192.168.100.20:3000/api"`
	// Zero keeps the net/http default of no timeout.
	Timeout time.Duration `yaml:"timeout" env:"PROCRASTINATOR_API_TIMEOUT"`
}

// StorageConfig locates the credential database
type StorageConfig struct {
	Path string `yaml:"path" env:"PROCRASTINATOR_CREDENTIALS"`
}

// CacheConfig controls the response cache
type CacheConfig struct {
	Disabled bool   `yaml:"disabled" env:"PROCRASTINATOR_NO_CACHE"`
	Dir      string `yaml:"dir" env:"PROCRASTINATOR_CACHE_DIR"`
}

// StartupConfig controls startup session validation
type StartupConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"PROCRASTINATOR_STARTUP_TIMEOUT" env-default:"5s"`
	Probe   bool          `yaml:"probe" env:"PROCRASTINATOR_STARTUP_PROBE"`
}

// LogConfig controls log output
type LogConfig struct {
	Level  string `yaml:"level" env:"PROCRASTINATOR_LOG_LEVEL" env-default:"warn"`
	Format string `yaml:"format" env:"PROCRASTINATOR_LOG_FORMAT" env-default:"console"`
}

// LoadConfig loads the configuration following the documented source priority,
// applies o on top and validates the result.
func LoadConfig(path string, o Overrides) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", p, err)
		}
		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)
	switch {
	case path != "":
		c, err = tryRead(path)
	case os.Getenv(ConfigPathEnv) != "":
		c, err = tryRead(os.Getenv(ConfigPathEnv))
	default:
		if _, statErr := os.Stat(DefaultConfigFile); statErr == nil {
			c, err = tryRead(DefaultConfigFile)
		} else {
			if err = cleanenv.ReadEnv(&cfg); err != nil {
				err = fmt.Errorf("failed to read environment: %w", err)
			}
			c = &cfg
		}
	}
	if err != nil {
		return nil, err
	}

	if err := c.resolvePaths(); err != nil {
		return nil, err
	}
	if err := c.Apply(o); err != nil {
		return nil, err
	}
	return c, nil
}

// DataDir returns ~/.procrastinator.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".procrastinator"), nil
}

func (c *Config) resolvePaths() error {
	if c.Storage.Path == "" || c.Cache.Dir == "" {
		dataDir, err := DataDir()
		if err != nil {
			return err
		}
		if c.Storage.Path == "" {
			c.Storage.Path = filepath.Join(dataDir, "credentials.db")
		}
		if c.Cache.Dir == "" {
			c.Cache.Dir = filepath.Join(dataDir, "cache")
		}
	}

	var err error
	if c.Storage.Path, err = expandHome(c.Storage.Path); err != nil {
		return err
	}
	c.Cache.Dir, err = expandHome(c.Cache.Dir)
	return err
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be >= 0")
	}
	if c.Startup.Timeout <= 0 {
		return fmt.Errorf("startup.timeout must be > 0")
	}
	switch c.Log.Level {
	case "error", "warn", "warning", "info", "debug":
	default:
		return fmt.Errorf("log.level must be error, warn, info or debug, got %q", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.API.BaseURL, "/")
}

// Overrides are command-line values that take precedence over every other source
type Overrides struct {
	APIURL      string
	Credentials string
	NoCache     bool
}

// Apply merges o into c and validates the result.
func (c *Config) Apply(o Overrides) error {
	if o.APIURL != "" {
		c.API.BaseURL = o.APIURL
	}
	if o.Credentials != "" {
		path, err := expandHome(o.Credentials)
		if err != nil {
			return err
		}
		c.Storage.Path = path
	}
	if o.NoCache {
		c.Cache.Disabled = true
	}
	return c.validate()
}
