// Package config loads npmkit settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/jongio/npmkit/cliout"
	"github.com/jongio/npmkit/fileutil"
	"github.com/jongio/npmkit/logutil"
	"github.com/jongio/npmkit/security"
	"github.com/jongio/npmkit/urlutil"
)

// DefaultFileName is the config file looked up in the working directory when
// no path is given.
const DefaultFileName = ".npmkit.yaml"

// DefaultCacheTTL is how long cached registry metadata stays fresh.
const DefaultCacheTTL = 15 * time.Minute

// Config holds npmkit settings. Environment variables take precedence over
// the file.
type Config struct {
	// NPMBinary is the npm-compatible client to drive.
	NPMBinary string `yaml:"npm" json:"npm" env:"NPMKIT_NPM"`
	// DevPaths are directories searched for local checkouts of packages.
	DevPaths []string `yaml:"devPaths,omitempty" json:"devPaths,omitempty" env:"NPMKIT_DEV_PATHS" envSeparator:","`
	Debug    bool     `yaml:"debug" json:"debug" env:"NPMKIT_DEBUG"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"logFormat" json:"logFormat" env:"NPMKIT_LOG_FORMAT"`
	// Output is the command output format, "default" or "json".
	Output string `yaml:"output" json:"output" env:"NPMKIT_OUTPUT"`
	// Registry overrides the npm registry URL.
	Registry string `yaml:"registry,omitempty" json:"registry,omitempty" env:"NPMKIT_REGISTRY"`
	// CacheDir holds cached registry metadata. Empty disables the cache.
	CacheDir string        `yaml:"cacheDir,omitempty" json:"cacheDir,omitempty" env:"NPMKIT_CACHE_DIR"`
	CacheTTL time.Duration `yaml:"cacheTTL" json:"cacheTTL" env:"NPMKIT_CACHE_TTL"`
	// RegistryRate caps registry-bound npm commands per second. Zero is unlimited.
	RegistryRate float64 `yaml:"registryRate,omitempty" json:"registryRate,omitempty" env:"NPMKIT_REGISTRY_RATE"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		NPMBinary: "npm",
		LogFormat: logutil.FormatText,
		Output:    string(cliout.FormatDefault),
		CacheTTL:  DefaultCacheTTL,
	}
}

// Load reads the config at path over the defaults and applies environment
// overrides. An empty path reads DefaultFileName if it exists; an explicit
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	if err := cfg.loadFile(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logutil.Debug("no config file", "path", path)
		} else {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided config location
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := security.ValidateFilePermissions(path); err != nil {
		logutil.Warn("config file is writable by other users", "path", path, "error", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks every setting. Dev paths must be free of shell
// metacharacters since they end up on npm command lines.
func (c *Config) Validate() error {
	if err := security.ValidatePackageManager(c.NPMBinary); err != nil {
		return fmt.Errorf("config npm: %w", err)
	}
	if _, err := logutil.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("config logFormat: %w", err)
	}
	if _, err := cliout.ParseFormat(c.Output); err != nil {
		return fmt.Errorf("config output: %w", err)
	}
	if c.Registry != "" {
		if err := urlutil.ValidateRegistry(c.Registry); err != nil {
			return fmt.Errorf("config registry: %w", err)
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config cacheTTL: must not be negative, got %s", c.CacheTTL)
	}
	if c.RegistryRate < 0 {
		return fmt.Errorf("config registryRate: must not be negative, got %g", c.RegistryRate)
	}
	if c.CacheDir != "" {
		if _, err := security.ValidatePath(c.CacheDir, ""); err != nil {
			return fmt.Errorf("config cacheDir: %w", err)
		}
	}
	for _, p := range c.DevPaths {
		if _, err := security.ValidatePath(p, ""); err != nil {
			return fmt.Errorf("config devPaths %q: %w", p, err)
		}
	}
	return nil
}

// Save writes the config as YAML, readable only by the owner.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return fileutil.AtomicWriteFile(path, data, fileutil.PrivateFilePermission)
}
