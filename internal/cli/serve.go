package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/internal/server"
	"github.com/matzehuels/stemma/pkg/config"
	"github.com/matzehuels/stemma/pkg/observability"
	"github.com/matzehuels/stemma/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		storeName string
		noCache   bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Layouts are computed from posted records or http(s) URLs and kept in the
store selected in the [server] section of the config file (memory, file or
mongo). Flags override the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := c.Config.Server
			if addr != "" {
				sc.Addr = addr
			}
			if storeName != "" {
				sc.Store = storeName
			}
			return c.runServe(cmd.Context(), sc, noCache, timeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&storeName, "store", "", "layout store: memory (default), file, mongo")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&timeout, "layout-timeout", 0, "upper bound on a single layout request (default 1m)")
	_ = cmd.RegisterFlagCompletionFunc("store", completeStores)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, sc config.ServerConfig, noCache bool, timeout time.Duration) error {
	st, err := c.openStore(ctx, sc)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if timeout <= 0 {
		timeout = c.Config.Layout.Timeout.Duration
	}
	stats := observability.NewStats()
	observability.Register(stats)
	defer observability.Reset()

	srv := server.New(runner, st, server.Config{
		Addr:          sc.Addr,
		MaxBodyBytes:  sc.MaxBodyBytes,
		LayoutTimeout: timeout,
		Retention:     sc.Retention.Duration,
		Logger:        c.logger(ctx).WithPrefix("server"),
		Stats:         stats,
	})

	printInfo("Serving on %s (store: %s)", StyleHighlight.Render(sc.Addr), sc.Store)
	return srv.ListenAndServe(ctx)
}

// openStore opens the layout store backend named in sc.
func (c *CLI) openStore(ctx context.Context, sc config.ServerConfig) (store.Store, error) {
	switch sc.Store {
	case config.StoreMemory, "":
		return store.NewMemoryStore(), nil
	case config.StoreFile:
		if sc.StoreDir == "" {
			return openLocalStore()
		}
		return store.NewFileStore(sc.StoreDir)
	case config.StoreMongo:
		if sc.MongoURI == "" {
			return nil, fmt.Errorf("mongo store requires server.mongo_uri in the config file")
		}
		st, err := store.NewMongoStore(ctx, store.MongoConfig{
			URI:      sc.MongoURI,
			Database: sc.MongoDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect mongo store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store %q (must be memory, file or mongo)", sc.Store)
	}
}
