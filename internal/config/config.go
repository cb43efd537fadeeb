// Package config handles the configuration directory, environment, and backend settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "duties"

	// EnvFile is the optional dotenv file inside the config directory.
	EnvFile = ".env"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (googletasks backend).
	TokenFile = "token.json"

	// DefaultAPIURL is the REST API root used when nothing is configured.
	DefaultAPIURL = "http://localhost:3001/api"

	// DefaultTimeout bounds each backend call.
	DefaultTimeout = 10 * time.Second
)

// Environment variables read by Load.
const (
	EnvAPIURL  = "DUTIES_API_URL"
	EnvTimeout = "DUTIES_API_TIMEOUT"
	EnvBackend = "DUTIES_BACKEND"
)

// Backend names.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the root of the REST API.
	APIURL string

	// Timeout bounds each backend call.
	Timeout time.Duration

	// Backend selects the service implementation.
	Backend string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory
// and default settings. If configDir is empty, uses XDG_CONFIG_HOME/duties
// or $HOME/.config/duties.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:     dir,
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
		Backend: BackendREST,
	}, nil
}

// Load creates a Config and applies <dir>/.env and the process environment,
// in that order of increasing precedence.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	values, err := godotenv.Read(cfg.EnvPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", cfg.EnvPath(), err)
	}
	if values == nil {
		values = map[string]string{}
	}
	for _, key := range []string{EnvAPIURL, EnvTimeout, EnvBackend} {
		if v := os.Getenv(key); v != "" {
			values[key] = v
		}
	}

	if err := cfg.apply(values); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(values map[string]string) error {
	if v := values[EnvAPIURL]; v != "" {
		c.APIURL = v
	}
	if v := values[EnvTimeout]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid %s: %q", EnvTimeout, v)
		}
		c.Timeout = d
	}
	if v := values[EnvBackend]; v != "" {
		if err := c.SetBackend(v); err != nil {
			return err
		}
	}
	return nil
}

// SetBackend selects a backend by name.
func (c *Config) SetBackend(name string) error {
	switch name {
	case BackendREST, BackendGoogleTasks:
		c.Backend = name
		return nil
	default:
		return fmt.Errorf("unknown backend: %s", name)
	}
}

// Logger returns a text logger writing to w. Debug level when Debug is set,
// warnings only otherwise.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// EnvPath returns the path to the dotenv file.
func (c *Config) EnvPath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
