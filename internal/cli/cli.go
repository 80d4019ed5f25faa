// Package cli implements the bookdash command-line interface.
//
// The CLI is built with cobra. Every command reads the shared configuration
// (see package config), builds a [pipeline.Runner] over the configured data
// source and cache, and presents the five views: as a web dashboard
// (serve), as chart files (render), as terminal tables (views), or as an
// interactive terminal dashboard (tui).
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and also receives pipeline and cache events
// through the observability hooks.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/buildinfo"
	"github.com/matzehuels/bookdash/pkg/cache"
	"github.com/matzehuels/bookdash/pkg/config"
	"github.com/matzehuels/bookdash/pkg/dataset"
	"github.com/matzehuels/bookdash/pkg/pipeline"
	"github.com/matzehuels/bookdash/pkg/render"
	"github.com/matzehuels/bookdash/pkg/source/csvfile"
	"github.com/matzehuels/bookdash/pkg/source/mongodb"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "bookdash"

// annotationNoConfig marks commands that run without loading the config.
const annotationNoConfig = "bookdash/no-config"

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
	Config *config.Config

	configPath string
	dataPath   string
	verbose    bool
	noCache    bool
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
		Short: "Bookdash charts the best-selling books of all time",
		Long: `Bookdash loads a table of best-selling books and presents five views of it:
the sales trend by first publication year, the top selling books, the top
authors, the genre distribution and the total sales per decade.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" if present)")
	root.PersistentFlags().StringVarP(&c.dataPath, "data", "d", "", "CSV file to load (overrides the configured source)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the artifact cache")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewsCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.datasetCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and prepares logging before any command
// runs.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationNoConfig] != "" {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.dataPath != "" {
		cfg.Source.Kind = config.SourceCSV
		cfg.Source.Path = c.dataPath
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	c.Config = cfg

	level := LogDebug
	if !c.verbose {
		if level, err = log.ParseLevel(cfg.Log.Level); err != nil {
			level = LogInfo
		}
	}
	c.SetLogLevel(level)
	registerLogHooks(c.Logger)

	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured source and cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg := c.config()

	src, err := newSource(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	policy, err := dataset.ParsePolicy(cfg.Dataset.Policy)
	if err != nil {
		src.Close()
		return nil, err
	}
	store, err := dataset.New(src, dataset.Options{Policy: policy, Logger: c.Logger})
	if err != nil {
		src.Close()
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(store, c.newCache(ctx, cfg.Cache), keyer, c.Logger), nil
}

// config returns the loaded configuration, or the defaults when setup has
// not run.
func (c *CLI) config() *config.Config {
	if c.Config == nil {
		c.Config = config.Default()
	}
	return c.Config
}

// renderOptions returns the configured figure size.
func (c *CLI) renderOptions() render.Options {
	cfg := c.config()
	return render.Options{Width: cfg.Render.Width, Height: cfg.Render.Height}
}

func newSource(ctx context.Context, cfg config.SourceConfig) (books.Source, error) {
	switch cfg.Kind {
	case config.SourceMongo:
		src, err := mongodb.Open(ctx, mongodb.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return csvfile.New(cfg.Path), nil
	}
}

// newCache opens the configured cache. A cache that cannot be opened is
// replaced by a NullCache so the dashboard still works.
func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig) cache.Cache {
	switch cfg.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return rc
	case config.CacheFile:
		dir, err := resolveCacheDir(cfg)
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "error", err)
			return cache.NewNullCache()
		}
		return fc
	default:
		return cache.NewNullCache()
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/bookdash/).
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

// resolveCacheDir returns the configured cache directory or the default one.
func resolveCacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// splitList parses a comma-separated flag value. Empty elements are dropped.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// versionCommand prints build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			return nil
		},
	}
}
