package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orrery/internal/config"
	"github.com/matzehuels/orrery/internal/server"
	"github.com/matzehuels/orrery/pkg/buildinfo"
	"github.com/matzehuels/orrery/pkg/cache"
	"github.com/matzehuels/orrery/pkg/pipeline"
	"github.com/matzehuels/orrery/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var sc config.ServerConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout service",
		Long: `Run the HTTP layout service.

POST a hierarchy to /v1/layouts to lay it out; layout options are taken from
the query string, with the config file's [layout] section as defaults. Stored
layouts are fetched with GET /v1/layouts/{id} and rendered with
GET /v1/layouts/{id}/render.

Layouts are cached in memory, or in Redis with --redis-url. Snapshots are kept
in memory unless --store-dir or --mongo-uri is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			changed := cmd.Flags().Changed
			if changed("addr") {
				cfg.Addr = sc.Addr
			}
			if changed("redis-url") {
				cfg.RedisURL = sc.RedisURL
			}
			if changed("mongo-uri") {
				cfg.MongoURI = sc.MongoURI
			}
			if changed("store-dir") {
				cfg.StoreDir = sc.StoreDir
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&sc.Addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().StringVar(&sc.RedisURL, "redis-url", "", "cache layouts in Redis (redis://host:6379/0)")
	cmd.Flags().StringVar(&sc.MongoURI, "mongo-uri", "", "store snapshots in MongoDB (mongodb://host:27017)")
	cmd.Flags().StringVar(&sc.StoreDir, "store-dir", "", "store snapshots as files in this directory")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.ServerConfig) error {
	cc, err := c.serverCache(ctx, cfg)
	if err != nil {
		return err
	}
	// Releases must not read each other's layouts from a shared cache.
	keyer := cache.NewScopedKeyer(nil, buildinfo.Get().Version+":")
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	defer runner.Close()

	st, err := c.serverStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Config{
		Addr:            cfg.Addr,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Defaults:        c.Config.Layout.Options(),
	}, runner, st, c.Logger)

	printInfo("Listening on %s", StyleHighlight.Render(cfg.Addr))
	return srv.Run(ctx)
}

func (c *CLI) serverCache(ctx context.Context, cfg config.ServerConfig) (cache.Cache, error) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache")
		return rc, nil
	}
	mc, err := cache.NewMemoryCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return mc, nil
}

func (c *CLI) serverStore(ctx context.Context, cfg config.ServerConfig) (store.Store, error) {
	switch {
	case cfg.MongoURI != "":
		st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI})
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		c.Logger.Info("using mongodb snapshot store")
		return st, nil
	case cfg.StoreDir != "":
		st, err := store.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using file snapshot store", "dir", st.Dir())
		return st, nil
	default:
		printWarning("Snapshots are kept in memory and lost on exit (use --store-dir or --mongo-uri)")
		return store.NewMemoryStore(), nil
	}
}
