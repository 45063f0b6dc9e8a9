package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assys/brickguide/pkg/cache"
	"github.com/assys/brickguide/pkg/config"
)

// cacheCommand creates the cache command for the file artifact cache.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered image cache",
		Long: `Manage the file artifact cache (cache.dir, or the user cache directory).

Redis-backed caches expire on their own and are not touched here.`,
	}

	cmd.AddCommand(c.fileCacheCommand("clear", "Remove every cached artifact", "Cleared %d cached entries",
		func(ctx context.Context, fc *cache.FileCache) (int, error) { return fc.Clear(ctx) }))
	cmd.AddCommand(c.fileCacheCommand("prune", "Remove expired cache entries", "Pruned %d expired entries",
		func(ctx context.Context, fc *cache.FileCache) (int, error) { return fc.Prune(ctx) }))
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	})

	return cmd
}

// fileCacheCommand builds a subcommand that runs op on the file cache and
// reports how many entries it removed.
func (c *CLI) fileCacheCommand(use, short, done string, op func(context.Context, *cache.FileCache) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := op(cmd.Context(), fc)
			if err != nil {
				return err
			}
			printSuccess(done, n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// fileCacheDir returns the file cache directory, warning when the
// configuration renders through another backend.
func (c *CLI) fileCacheDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Cache.Backend != config.BackendFile {
		printWarning("cache.backend is %q; these commands manage the file cache", cfg.Cache.Backend)
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}
