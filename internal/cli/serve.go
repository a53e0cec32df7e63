package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecrawl/pkg/api"
	"github.com/matzehuels/nodecrawl/pkg/config"
	"github.com/matzehuels/nodecrawl/pkg/store"
	"github.com/matzehuels/nodecrawl/pkg/store/mongo"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		nodes    string
		mongoURI string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored nodes over HTTP",
		Long: `Serve stored nodes over HTTP.

Nodes are read from MongoDB when a URI is configured, otherwise from the JSON
file a crawl wrote. The file is re-read on every request, so a crawl running
alongside is picked up without a restart.`,
		Example: `  nodecrawl serve --addr :9000
  nodecrawl serve --mongo-uri mongodb://localhost:27017`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("nodes") {
				cfg.Output.JSON = nodes
			}
			if cmd.Flags().Changed("mongo-uri") {
				cfg.Store.MongoURI = mongoURI
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&nodes, "nodes", "", "JSON nodes file (default nodes.json)")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "read nodes from MongoDB")

	return cmd
}

// openStore returns the Mongo store when configured, else the JSON file store.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, string, error) {
	if cfg.Store.MongoURI != "" {
		s, err := mongo.NewStore(ctx, mongo.Config{
			URI:        cfg.Store.MongoURI,
			Database:   cfg.Store.Database,
			Collection: cfg.Store.Collection,
		})
		if err != nil {
			return nil, "", err
		}
		return s, "mongodb " + cfg.Store.Database + "." + cfg.Store.Collection, nil
	}
	if cfg.Output.JSON == "" || cfg.Output.JSON == "-" {
		return nil, "", errors.New("no node source: set --nodes or --mongo-uri")
	}
	return store.NewFile(cfg.Output.JSON), cfg.Output.JSON, nil
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	st, source, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           api.NewRouter(api.NewHandler(st, c.Logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSuccess("Serving nodes")
	printKeyValue("Address", StyleLink.Render("http://"+displayAddr(cfg.Serve.Addr)))
	printKeyValue("Source", StyleHighlight.Render(source))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", cfg.Serve.Addr, err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
