// Package config loads the settings shared by the todoist programs from a TOML file, with environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	todoist "github.com/nicolagi/todoist-rest"
)

var (
	// ErrNoToken is returned by Token when neither the configuration, nor the environment, nor the token file
	// provide an API token.
	ErrNoToken = errors.New("no Todoist API token configured")

	// ErrTokenFilePermissions is returned when the token file is readable by group or others.
	ErrTokenFilePermissions = errors.New("token file must not be accessible by group or others")
)

// Environment variables overriding the configuration file.
const (
	EnvToken    = "TODOIST_API_TOKEN"
	EnvEndpoint = "TODOIST_ENDPOINT"
)

type Config struct {
	// Token takes precedence over TokenFile. Prefer the token file, which is checked for strict permissions.
	Token     string `toml:"token"`
	TokenFile string `toml:"token_file"`

	Endpoint string `toml:"endpoint"`

	// StateDir holds the dumped local mirror, see todoist.Store.Dump.
	StateDir string `toml:"state_dir"`

	// WireLog, if set, is the path of a file where all requests and responses are logged.
	WireLog string `toml:"wire_log"`

	PullInterval time.Duration `toml:"pull_interval"`

	// RateLimit is in requests per second; non-positive disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`

	Timeout time.Duration `toml:"timeout"`
}

// Dir returns the directory holding the token, the configuration and the state: lib/todoist within the user's
// home directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "lib", "todoist"), nil
}

// Default returns the configuration used when there's no configuration file, rooted at dir.
func Default(dir string) *Config {
	return &Config{
		TokenFile:    filepath.Join(dir, "token"),
		Endpoint:     todoist.DefaultEndpoint,
		StateDir:     dir,
		PullInterval: time.Minute,
		RateLimit:    0.5,
		Burst:        10,
		Timeout:      30 * time.Second,
	}
}

// Load reads the configuration at pathname, or at config.toml in Dir if pathname is empty. A missing file is not
// an error; the defaults apply. Keys absent from the file keep their default values.
func Load(pathname string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if pathname == "" {
		pathname = filepath.Join(dir, "config.toml")
	}
	c := Default(dir)
	if _, err := toml.DecodeFile(pathname, c); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config %s: %w", pathname, err)
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	return c, nil
}

// APIToken returns the configured token, reading it from the token file if not set directly.
func (c *Config) APIToken() (string, error) {
	if c.Token != "" {
		return strings.TrimSpace(c.Token), nil
	}
	if c.TokenFile == "" {
		return "", ErrNoToken
	}
	fi, err := os.Stat(c.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", c.TokenFile, ErrNoToken)
	}
	if err != nil {
		return "", err
	}
	if fi.Mode().Perm()&0077 != 0 {
		return "", fmt.Errorf("%s: got %#o, want %#o: %w",
			c.TokenFile, fi.Mode().Perm(), fi.Mode().Perm()&0700, ErrTokenFilePermissions)
	}
	b, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", fmt.Errorf("%s: %w", c.TokenFile, ErrNoToken)
	}
	return token, nil
}

// NewClient builds a client from the configuration. It does not load the state.
func (c *Config) NewClient() (*todoist.Client, error) {
	token, err := c.APIToken()
	if err != nil {
		return nil, err
	}
	opts := []todoist.ClientOption{
		todoist.WithEndpoint(c.Endpoint),
		todoist.WithRateLimit(c.RateLimit, c.Burst),
		todoist.WithPullInterval(c.PullInterval),
		todoist.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
	}
	if c.WireLog != "" {
		opts = append(opts, todoist.WithWireLog(c.WireLog))
	}
	return todoist.NewClient(token, opts...)
}
