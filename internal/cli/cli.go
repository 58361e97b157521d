package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wayfinder/pkg/buildinfo"
	"github.com/matzehuels/wayfinder/pkg/cache"
	"github.com/matzehuels/wayfinder/pkg/compose"
	"github.com/matzehuels/wayfinder/pkg/config"
	"github.com/matzehuels/wayfinder/pkg/graph"
	wio "github.com/matzehuels/wayfinder/pkg/io"
	"github.com/matzehuels/wayfinder/pkg/navigator"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "wayfinder"

	// configEnv names a config file when --config is not given.
	configEnv = "WAYFINDER_CONFIG"
)

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
	Logger     *log.Logger
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
		Use:           appName,
		Short:         "Wayfinder gives walking directions across a campus",
		Long:          `Wayfinder routes between campus positions and rooms of the campus buildings, crossing from outdoor paths to floor plans through building entrances, and phrases the indoor part as turn-by-turn instructions.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (TOML; default $"+configEnv+")")

	root.AddCommand(c.routeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.weightsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// =============================================================================
// Loading
// =============================================================================

// loadConfig reads the config named by --config or $WAYFINDER_CONFIG,
// falling back to defaults and environment overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	return config.Load(path)
}

// loadSite loads every graph named by cfg.
func (c *CLI) loadSite(ctx context.Context, cfg config.Config) (*graph.Site, error) {
	prog := newProgress(loggerFromContext(ctx))
	site, err := wio.LoadSite(cfg, c.Logger)
	if err != nil {
		return nil, err
	}
	prog.done("Loaded campus " + site.Campus.Name())
	return site, nil
}

// newRunner creates a navigator for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, site *graph.Site, noCache bool) (*navigator.Runner, error) {
	ch, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	comp := compose.New(site, compose.WithWorkers(cfg.Workers), compose.WithLogger(c.Logger))
	r := navigator.NewRunner(comp, ch, nil, c.Logger)
	r.TTL = cfg.Cache.TTL
	r.IconDir, r.IconExt = cfg.Icons.Dir, cfg.Icons.Ext
	return r, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && cfg.Backend == config.CacheFile && cfg.Dir == "" {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/wayfinder/).
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
