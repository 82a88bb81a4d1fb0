package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/todomvc/internal/cli"
	httpAdapter "github.com/aretw0/todomvc/pkg/adapters/http"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Serves the list as server-rendered HTML, a JSON API and a diff stream over SSE.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				hooks    []domain.LifecycleHooks
				registry *prometheus.Registry
			)
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			withMetrics, _ := cmd.Flags().GetBool("metrics")
			if withMetrics || cfg.Metrics {
				registry = prometheus.NewRegistry()
				registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				hooks = append(hooks, observability.NewMetrics(registry).Hooks())
			}

			s, err := openSession(cmd, hooks...)
			if err != nil {
				return err
			}
			defer s.Close()

			addr := s.cfg.Addr
			if v, _ := cmd.Flags().GetString("addr"); v != "" {
				addr = v
			}

			opts := []httpAdapter.Option{httpAdapter.WithLogger(s.logger)}
			if registry != nil {
				opts = append(opts, httpAdapter.WithMetrics(registry))
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpAdapter.NewHandler(s.app, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				s.logger.Info("Starting TodoMVC server", "addr", addr, "namespace", s.cfg.Namespace, "store", s.cfg.Store.Driver)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				s.logger.Info("Start shutdown", "signal", ctx.Signal())

				// Give outstanding requests a deadline for completion.
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					s.logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
					return srv.Close()
				}
				s.logger.Info("TodoMVC server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().String("addr", "", "Address to listen on (overrides config)")
	cmd.Flags().Bool("metrics", false, "Expose Prometheus metrics at /metrics (also enabled by the metrics config key)")
	return cmd
}
