// Package cli implements the infcat command-line interface.
//
// The root command keeps the flat surface of the original catalog
// generator (-o, -d, -i, -h, -O, -A, -v plus trailing files) and builds a
// catalog. Subcommands expose the resolver on its own:
//   - resolve: print the hardware id and manifest
//   - explain: draw the walk as DOT or SVG
//   - cache: inspect or clear the resolve cache
//   - completion: shell completion scripts
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/infcat/internal/config"
	"github.com/matzehuels/infcat/pkg/buildinfo"
	"github.com/matzehuels/infcat/pkg/cache"
	"github.com/matzehuels/infcat/pkg/catalog"
	"github.com/matzehuels/infcat/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// redisKeyPrefix scopes keys in a shared Redis instance.
	redisKeyPrefix = "infcat:"
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
	Logger *log.Logger

	cfg   *config.Config
	flags flags
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command. Run without a subcommand it
// resolves --inf-file and builds the catalog.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "infcat [flags] [file]...",
		Short: "infcat builds driver catalogs from INF descriptors",
		Long: `infcat reads a driver INF, collects the hardware id and every file the
descriptor installs, and builds a catalog (.cat) over them with makecat.

Files given after the flags are appended to the catalog by base name.`,
		Example: `  infcat -d dist/driver -i usbdrv.inf -o dist/driver/usbdrv.cat
  infcat -d dist/driver -i usbdrv.inf -o usbdrv.cat -O 10X64 -A 2:6.4 README.txt
  infcat resolve -d dist/driver -i usbdrv.inf --format json`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: c.runBuild,
	}

	root.SetVersionTemplate(buildinfo.Template())
	// -h is --hwid; help keeps only its long form.
	root.PersistentFlags().Bool("help", false, "help for infcat")
	c.flags.registerPersistent(root)
	c.flags.registerBuild(root)

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.explainCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file, applies it under the flags and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	if c.flags.verbose {
		c.SetLogLevel(LogDebug)
	}
	c.Logger.Debug("infcat", "build", buildinfo.Get().String())

	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.flags.applyConfig(cmd, cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner using the configured cache and
// catalog builder.
func (c *CLI) newRunner(ctx context.Context, builder catalog.Builder) (*pipeline.Runner, error) {
	store, keyer, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, keyer, builder, c.Logger)
	r.TTL, _ = c.cfg.CacheTTL()
	return r, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	if c.flags.noCache || c.cfg.Cache.Disabled {
		return cache.NewNullCache(), nil, nil
	}
	if url := c.cfg.Cache.URL; url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, redisKeyPrefix), nil
	}
	dir, err := c.fileCacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

func (c *CLI) fileCacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/infcat/).
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
