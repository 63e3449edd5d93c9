package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/suspense/internal/config"
	"github.com/vango-dev/suspense/internal/telemetry"
	"github.com/vango-dev/suspense/pkg/ssr"
	"github.com/vango-dev/suspense/pkg/suspense"
)

func serveCmd() *cobra.Command {
	var (
		configDir string
		port      int
		host      string
		delay     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog page over HTTP",
		Long: `Serve the catalog page, with /healthz and Prometheus metrics on /metrics.

Examples:
  vango-ssr serve
  vango-ssr serve --port=8080
  vango-ssr serve --config=./deploy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.ErrOrStderr(), cfg, delay)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing vango-ssr.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from vango-ssr.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vango-ssr.json)")
	cmd.Flags().DurationVar(&delay, "delay", 100*time.Millisecond, "Simulated product query latency")

	return cmd
}

func runServe(ctx context.Context, stderr io.Writer, cfg *config.Config, delay time.Duration) error {
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	store, err := openCatalogStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           newHandler(cfg, logger, prometheus.NewRegistry(), store, delay),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	info(stderr, "Listening on http://%s", cfg.Address())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	info(stderr, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler builds the router serving the catalog with metrics recorded
// in reg.
func newHandler(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry, store *catalogStore, delay time.Duration) http.Handler {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := suspense.NewMetrics(suspense.WithRegistry(reg))

	return ssr.NewRouter(ssr.RouterConfig{
		Options: ssr.Options{
			Renderer: suspense.NewRenderer(suspense.Config{
				FallbackFast: cfg.Render.FallbackFast,
				Logger:       logger,
				Metrics:      metrics,
			}),
			Static:  cfg.Render.Static,
			Timeout: cfg.RenderTimeout(),
			Logger:  logger,
		},
		Routes:   []ssr.Route{{Pattern: "/", Page: catalogPage(store, delay)}},
		Gatherer: reg,
		Tracing:  cfg.Telemetry.Endpoint != "",
	})
}
