// Package config loads svnquery configuration from an optional YAML file
// overlaid with environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (SVNQUERY_REPOSITORY_URL, SVNQUERY_INDEX_PATH, ...)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/svnquery/svnquery/internal/obfuscate"
)

// envPrefix is stripped from environment variables before mapping them onto
// config keys: SVNQUERY_REPOSITORY_URL -> repository.url.
const envPrefix = "SVNQUERY_"

// Config is the complete svnquery configuration.
type Config struct {
	Repository RepositoryConfig `koanf:"repository"`
	Index      IndexConfig      `koanf:"index"`
	Server     ServerConfig     `koanf:"server"`
	Log        LogConfig        `koanf:"log"`
}

// RepositoryConfig identifies the Subversion repository and how to
// authenticate against it.
type RepositoryConfig struct {
	URL      string `koanf:"url"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	// Credentials is an obfuscated user/password token (see the auth
	// command). When set it takes precedence over Username/Password.
	Credentials string `koanf:"credentials"`
}

// IndexConfig controls where the index lives and how it is built.
type IndexConfig struct {
	Path          string   `koanf:"path"`
	Include       []string `koanf:"include"`        // path globs; empty means everything
	Exclude       []string `koanf:"exclude"`        // path globs; wins over include
	MaxWorkers    int      `koanf:"max_workers"`    // concurrent path-data fetches
	OptimizeEvery int      `koanf:"optimize_every"` // state checkpoint cadence, in revisions
}

// ServerConfig holds the HTTP search server settings.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // console or json
}

// Load reads configuration from the given YAML file (skipped when empty or
// missing) and overlays SVNQUERY_* environment variables.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Index: IndexConfig{
			Path:          ".svnquery",
			MaxWorkers:    4,
			OptimizeEvery: 500,
		},
		Server: ServerConfig{Addr: ":8970"},
		Log:    LogConfig{Level: "info", Format: "console"},
	}

	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", configPath, err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
		}
	}

	// SVNQUERY_REPOSITORY_URL -> repository.url
	// SVNQUERY_INDEX_MAX_WORKERS -> index.max_workers
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(key, "_", 2)
		if len(parts) == 1 {
			return key
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// ResolveCredentials returns the plain-text user/password pair, decoding the
// obfuscated token when one is configured.
func (c *Config) ResolveCredentials() (username, password string, err error) {
	if c.Repository.Credentials != "" {
		return obfuscate.Decode(c.Repository.Credentials)
	}
	return c.Repository.Username, c.Repository.Password, nil
}

// Validate checks the settings required to reach a repository.
func (c *Config) Validate() error {
	if c.Repository.URL == "" {
		return fmt.Errorf("config: repository.url is required (or set SVNQUERY_REPOSITORY_URL)")
	}
	if c.Index.Path == "" {
		return fmt.Errorf("config: index.path is required")
	}
	if c.Index.MaxWorkers <= 0 {
		return fmt.Errorf("config: index.max_workers must be positive")
	}
	return nil
}
