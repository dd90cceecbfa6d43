// Package cli implements the dotsink command-line interface.
//
// The CLI is built using cobra and logs through charmbracelet/log. Commands:
//   - render: Stream a DOT file (or stdin) into the renderer
//   - demo: Render the built-in example graph
//   - cache: Manage the rendered-artifact cache
//   - config: Show the configuration in effect
//   - completion: Generate shell completion scripts
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotsink/pkg/buildinfo"
	"github.com/matzehuels/dotsink/pkg/cache"
	"github.com/matzehuels/dotsink/pkg/config"
	"github.com/matzehuels/dotsink/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "dotsink"

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
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and default settings.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "dotsink streams Graphviz DOT text into a renderer",
		Long:         `dotsink pipes graph descriptions into the Graphviz dot renderer as they are produced, optionally keeping a copy of the DOT source next to the rendered file.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dotsink/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and installs logging hooks.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("No config path", "err", err)
			c.installHooks()
			return nil
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.configPath = path
	c.Logger.Debug("Loaded config", "path", path)
	c.installHooks()
	return nil
}

func (c *CLI) installHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetSinkHooks(h)
	observability.SetCacheHooks(h)
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache returns the artifact cache, or a NullCache when caching is off or
// the cache directory is unavailable.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache || !c.Config.Cache.Enabled {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("Cache disabled", "err", err)
		return cache.NewNullCache()
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("Cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return store
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/dotsink/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
