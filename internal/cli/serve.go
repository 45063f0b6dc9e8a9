package cli

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/assys/brickguide/internal/server"
	"github.com/assys/brickguide/pkg/config"
	"github.com/assys/brickguide/pkg/observability/prom"
	"github.com/assys/brickguide/pkg/pickbylight"
	"github.com/assys/brickguide/pkg/session"
)

// sessionCleanupInterval is how often expired sessions are purged.
const sessionCleanupInterval = 10 * time.Minute

// serveCommand creates the serve command running the web application.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the guide web server",
		Long: `Run the guide web server.

Operators log in at /, gesture and voice clients acknowledge steps at
/auto_acknowledge, and /brick_storage manages the pick-by-light bins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable artifact caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config, noCache bool) error {
	e, err := c.openEnv(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer e.close()

	sessions, err := e.sessionStore()
	if err != nil {
		return err
	}

	storage, err := newStorage(cfg)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var signaler pickbylight.Signaler
	if cfg.PickByLight.Enabled {
		ctrl, err := pickbylight.NewController(pickbylight.ControllerOptions{
			Host:     cfg.PickByLight.Host,
			Port:     cfg.PickByLight.Port,
			Universe: cfg.PickByLight.Universe,
			LEDCount: cfg.PickByLight.LEDCount,
			Color:    cfg.LEDColor(),
			Logger:   c.Logger,
		})
		if err != nil {
			return err
		}
		signaler = ctrl
		g.Go(func() error { return ctrl.Run(gctx) })
		c.Logger.Info("pick-by-light enabled", "host", cfg.PickByLight.Host, "leds", cfg.PickByLight.LEDCount)
	}

	var metrics *prom.Metrics
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = prom.New(reg, appName)
		metrics.Register()
	}

	srv, err := server.New(server.Options{
		Runner:     e.runner,
		Sessions:   sessions,
		SessionTTL: cfg.Sessions.TTL,
		Picker:     pickbylight.NewPicker(storage, signaler),
		Metrics:    metrics,
		Format:     cfg.Render.Format,
		Scale:      cfg.Render.Scale,
		Grid:       cfg.Grid(),
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}

	g.Go(func() error { return cleanupSessions(gctx, sessions, c) })
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.Server.Addr) })

	c.Logger.Info("brickguide ready",
		"url", cfg.Server.URL,
		"sessions", cfg.Sessions.Backend,
		"cache", cfg.Cache.Backend,
		"format", cfg.Render.Format)
	return g.Wait()
}

// newStorage fills a shelf with the configured bins.
func newStorage(cfg *config.Config) (*pickbylight.Storage, error) {
	storage := pickbylight.NewStorage(cfg.PickByLight.LEDCount)
	for _, bin := range cfg.PickByLight.Bins {
		if err := storage.Add(bin); err != nil {
			return nil, err
		}
	}
	return storage, nil
}

func cleanupSessions(ctx context.Context, store session.Store, c *CLI) error {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				c.Logger.Warn("session cleanup", "err", err)
			}
		}
	}
}
