// Package config loads the cellsolve configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/cellsolve/config.toml
// (falling back to ~/.config/cellsolve/config.toml). Every key is optional;
// missing keys keep the values from [Default].
//
//	[solver]
//	backend = "ilp"
//	time_budget = "10s"
//	domain_min = 0
//	domain_max = 10000
//
//	[layout]
//	default_footprint = true
//	min_footprint = 10
//
//	[cache]
//	dir = ""          # defaults to $XDG_CACHE_HOME/cellsolve
//	redis_url = ""    # use Redis instead of the file cache when set
//	scope = ""        # key prefix shared by every entry, e.g. "team:analog:"
//	ttl = "168h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cellsolve/pkg/cache"
	"github.com/matzehuels/cellsolve/pkg/errors"
	"github.com/matzehuels/cellsolve/pkg/layout"
	"github.com/matzehuels/cellsolve/pkg/solver"
)

// AppName names the configuration and cache directories.
const AppName = "cellsolve"

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultBackend is the solver backend used when none is configured.
	DefaultBackend = "ilp"

	// DefaultAddr is the listen address of `cellsolve serve`.
	DefaultAddr = ":8080"

	// DefaultRequestTimeout bounds one API request.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultMaxBodyBytes caps API request bodies.
	DefaultMaxBodyBytes int64 = 4 << 20
)

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// =============================================================================
// Config
// =============================================================================

// Config is the decoded configuration file.
type Config struct {
	Solver SolverConfig `toml:"solver"`
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// SolverConfig selects the backend and bounds the variable space.
type SolverConfig struct {
	Backend    string   `toml:"backend"`
	TimeBudget Duration `toml:"time_budget"`
	DomainMin  int64    `toml:"domain_min"`
	DomainMax  int64    `toml:"domain_max"`
}

// LayoutConfig controls the default footprint of unconstrained leaves.
type LayoutConfig struct {
	DefaultFootprint bool  `toml:"default_footprint"`
	MinFootprint     int64 `toml:"min_footprint"`
}

// CacheConfig selects where solved documents are cached.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Scope    string   `toml:"scope"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures `cellsolve serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	lo := layout.DefaultOptions()
	return &Config{
		Solver: SolverConfig{
			Backend:    DefaultBackend,
			TimeBudget: Duration{lo.TimeBudget},
			DomainMin:  lo.DomainMin,
			DomainMax:  lo.DomainMax,
		},
		Layout: LayoutConfig{
			DefaultFootprint: lo.DefaultFootprint,
			MinFootprint:     lo.MinFootprint,
		},
		Cache: CacheConfig{
			TTL: Duration{cache.TTLLayout},
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			RequestTimeout: Duration{DefaultRequestTimeout},
			MaxBodyBytes:   DefaultMaxBodyBytes,
		},
	}
}

// Load reads the configuration at path. An empty path means [DefaultPath];
// a missing default file yields [Default], while a missing explicit file is
// a NOT_FOUND error. The result is validated.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if explicit {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads TOML from r on top of the defaults and validates the result.
// Unknown keys are rejected so typos do not pass silently.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate rejects inconsistent values with INVALID_INPUT errors. The
// backend name is checked separately by [Config.Backend] because the
// registry depends on which backends the binary links.
func (c *Config) Validate() error {
	if c.Solver.Backend == "" {
		return errors.New(errors.ErrCodeInvalidInput, "solver.backend must not be empty")
	}
	if c.Solver.DomainMax-c.Solver.DomainMin < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "solver domain [%d, %d] is empty", c.Solver.DomainMin, c.Solver.DomainMax)
	}
	if c.Solver.TimeBudget.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "solver.time_budget must not be negative")
	}
	if c.Layout.MinFootprint < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "layout.min_footprint must be positive, got %d", c.Layout.MinFootprint)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_body_bytes must not be negative")
	}
	return nil
}

// Backend resolves the configured solver backend from the registry.
func (c *Config) Backend() (solver.Backend, error) {
	return solver.Lookup(c.Solver.Backend)
}

// LayoutOptions converts the solver and layout sections to engine options.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		DefaultFootprint: c.Layout.DefaultFootprint,
		MinFootprint:     c.Layout.MinFootprint,
		DomainMin:        c.Solver.DomainMin,
		DomainMax:        c.Solver.DomainMax,
		TimeBudget:       c.Solver.TimeBudget.Duration,
	}
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/cellsolve/config.toml, falling back
// to ~/.config/cellsolve/config.toml.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, or the XDG default
// ($XDG_CACHE_HOME/cellsolve, falling back to ~/.cache/cellsolve).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
