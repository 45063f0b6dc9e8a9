package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/assys/brickguide/pkg/blueprint"
	"github.com/assys/brickguide/pkg/buildinfo"
	"github.com/assys/brickguide/pkg/cache"
	"github.com/assys/brickguide/pkg/config"
	"github.com/assys/brickguide/pkg/errors"
	"github.com/assys/brickguide/pkg/pipeline"
	"github.com/assys/brickguide/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "brickguide"

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
		Short: "Brickguide walks operators through brick building plans",
		Long: `Brickguide serves step-by-step building instructions for brick models.

Each blueprint is an ordered list of brick placements on a grid. The guide
shows one placement per step and, after the last one, four elevation views
of the finished model to check the build against.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $BRICKGUIDE_CONFIG or ./"+config.DefaultFile+")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.guideCommand())
	root.AddCommand(c.ackCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// completeBlueprint completes the first positional argument with the names
// in the configured blueprint store.
func (c *CLI) completeBlueprint(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	e, err := c.openEnv(cmd.Context(), cfg, true)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer e.close()
	names, err := e.runner.Source.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// =============================================================================
// Environment
// =============================================================================

// env holds the backends opened from a configuration.
type env struct {
	cfg    *config.Config
	store  blueprint.Store
	runner *pipeline.Runner
	redis  *redis.Client

	closers []func() error
}

// openEnv connects the blueprint store, the artifact cache and, when any
// backend needs it, Redis. noCache disables artifact and blueprint caching.
func (c *CLI) openEnv(ctx context.Context, cfg *config.Config, noCache bool) (*env, error) {
	e := &env{cfg: cfg}
	if err := e.open(ctx, c.Logger, noCache); err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func (e *env) open(ctx context.Context, logger *log.Logger, noCache bool) error {
	cfg := e.cfg
	cacheBackend := cfg.Cache.Backend
	if noCache {
		cacheBackend = config.BackendNone
	}
	if cacheBackend == config.BackendRedis || cfg.Sessions.Backend == config.BackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return errors.Wrap(errors.ErrCodeUnavailable, err, "connect redis %s", cfg.Redis.Addr)
		}
		e.redis = client
		if cacheBackend != config.BackendRedis {
			e.closers = append(e.closers, client.Close)
		}
		logger.Debug("connected to redis", "addr", cfg.Redis.Addr)
	}

	label := "dir"
	if cfg.Blueprints.MongoURI != "" {
		src, client, err := blueprint.ConnectMongo(ctx, blueprint.MongoOptions{
			URI:        cfg.Blueprints.MongoURI,
			Database:   cfg.Blueprints.MongoDatabase,
			Collection: cfg.Blueprints.MongoCollection,
		})
		if err != nil {
			return err
		}
		e.closers = append(e.closers, func() error { return client.Disconnect(context.Background()) })
		e.store = src
		label = "mongo"
		logger.Debug("connected to mongodb", "database", cfg.Blueprints.MongoDatabase)
	} else {
		e.store = blueprint.NewDirSource(cfg.Blueprints.Dir)
	}

	artifacts, err := e.artifactCache(cacheBackend)
	if err != nil {
		return err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Redis.Prefix)

	var source blueprint.Source = e.store
	if cacheBackend != config.BackendNone && cfg.Blueprints.CacheTTL > 0 {
		source = blueprint.NewCachedSource(e.store, artifacts, keyer, label, cfg.Blueprints.CacheTTL)
	}
	e.runner = pipeline.NewRunner(source, artifacts, keyer, logger)
	e.runner.Palette = cfg.Palette()
	e.closers = append(e.closers, e.runner.Close)
	return nil
}

func (e *env) artifactCache(backend string) (cache.Cache, error) {
	switch backend {
	case config.BackendMemory:
		return cache.NewMemoryCache(), nil
	case config.BackendFile:
		dir := e.cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case config.BackendRedis:
		// The cache owns the client from here on; closing the runner
		// closes it.
		return cache.NewRedisCacheFromClient(e.redis, ""), nil
	}
	return cache.NewNullCache(), nil
}

// sessionStore opens the configured session backend.
func (e *env) sessionStore() (session.Store, error) {
	switch e.cfg.Sessions.Backend {
	case config.BackendFile:
		return session.NewFileStore(e.cfg.Sessions.Dir)
	case config.BackendRedis:
		return session.NewRedisStore(e.redis, e.cfg.Redis.Prefix+"session:"), nil
	}
	return session.NewMemoryStore(), nil
}

func (e *env) close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/brickguide/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice, falling
// back to def when empty.
func parseFormats(s, def string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{def}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
