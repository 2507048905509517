package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/laneflow/pkg/cache"
	"github.com/matzehuels/laneflow/pkg/config"
	"github.com/matzehuels/laneflow/pkg/pipeline"
	"github.com/matzehuels/laneflow/pkg/server"
	"github.com/matzehuels/laneflow/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command running the HTTP conversion API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Long: `Run the HTTP conversion API.

The server exposes POST /api/convert for conversions, GET /api/runs for run
history, and GET /healthz for liveness checks. Cache and store backends are
taken from the config file; --addr overrides the configured listen address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, configPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ~/.config/laneflow/config.toml)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	artifactCache, err := serverCache(ctx, cfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(artifactCache, nil, c.Logger)
	defer runner.Close()

	runStore, err := serverStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := runStore.Close(closeCtx); err != nil {
			c.Logger.Error("close store", "error", err)
		}
	}()

	srv, err := server.NewServer(server.Config{
		Addr:   cfg.Server.Addr,
		Runner: runner,
		Store:  runStore,
		Logger: c.Logger,
	})
	if err != nil {
		return err
	}

	// Stop serving when the command context is cancelled (SIGINT/SIGTERM).
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// serverCache builds the artifact cache configured in [cache].
func serverCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		return cache.NewNullCache(), nil
	case config.CacheBackendRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
	case config.CacheBackendFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// serverStore builds the run store configured in [store].
func serverStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMongo:
		return store.NewMongoStore(ctx, cfg.Store.Mongo.URI, cfg.Store.Mongo.Database)
	case config.StoreBackendMemory:
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
