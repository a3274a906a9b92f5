package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiregraph/pkg/api"
	"github.com/matzehuels/wiregraph/pkg/observability"
	"github.com/matzehuels/wiregraph/pkg/observability/prom"
	"github.com/matzehuels/wiregraph/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		memory  bool
		noCache bool
		metrics bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints:

  POST   /v1/cleanup                cleaned snapshot
  POST   /v1/nets                   nets of the posted snapshot
  GET    /v1/documents              stored documents
  POST   /v1/documents?name=...     store a snapshot
  GET    /v1/documents/{id}         stored snapshot
  PUT    /v1/documents/{id}         create or replace a snapshot
  DELETE /v1/documents/{id}
  GET    /v1/documents/{id}/nets    nets of a stored snapshot
  GET    /metrics                   Prometheus metrics (with --metrics)

Documents go to the configured store (MongoDB or files) unless --memory is
set. Results are cached in the configured cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, memory, noCache, metrics, timeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep documents in memory only")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "serve Prometheus metrics at /metrics")
	cmd.Flags().DurationVar(&timeout, "timeout", api.DefaultTimeout, "per-request timeout")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, memory, noCache, metrics bool, timeout time.Duration) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	var store storage.Store
	if memory {
		store = storage.NewMemoryStore()
	} else if store, err = c.newStore(ctx); err != nil {
		runner.Close()
		return err
	}

	opts := []api.Option{api.WithTimeout(timeout)}
	if metrics {
		collector := prom.NewCollector("wiregraph")
		collector.Register()
		defer observability.Reset()
		opts = append(opts, api.WithMetrics(collector.Handler()))
	}

	server := api.New(runner, store, c.Logger, opts...)
	defer server.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	printSuccess("Listening on http://%s", ln.Addr())
	printDetail("Press Ctrl+C to stop")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
