// Package cli implements the cellsolve command-line interface.
//
// # Commands
//
//   - solve: solve a layout document and write artifacts
//   - validate: check constraints and document structure without solving
//   - flatten: print the resolved leaf rectangles as a table
//   - convert: re-encode a document as JSON, TOML or YAML
//   - browse: explore a solved cell tree interactively
//   - serve: run the HTTP API
//   - cache, config: manage the local cache and configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Status lines
// go to stdout; logs go to stderr.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellsolve/pkg/buildinfo"
	"github.com/matzehuels/cellsolve/pkg/cache"
	"github.com/matzehuels/cellsolve/pkg/config"
	"github.com/matzehuels/cellsolve/pkg/pipeline"
	_ "github.com/matzehuels/cellsolve/pkg/solver/ilp" // default backend
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag; empty means the default location.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cellsolve places hierarchical cell layouts from constraints",
		Long: `cellsolve solves hierarchical 2-D cell layouts. Leaves and containers are
placed by linear constraints over their corner coordinates; solved blocks can
be frozen or fixed and instantiated many times.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cellsolve/config.toml)")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.flattenCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the file named by --config, or the default one.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Scope != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Scope)
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.LayoutTTL = cfg.Cache.TTL.Duration
	return r, nil
}

// newCache prefers Redis when configured and falls back to the file cache.
// An unusable cache directory disables caching instead of failing the run.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, appName)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using the XDG standard (~/.cache/cellsolve/).
func cacheDir() (string, error) {
	return config.Default().CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
