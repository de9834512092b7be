package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpAdapter "github.com/aretw0/turing/pkg/adapters/http"
	"github.com/aretw0/turing/pkg/adapters/mcp"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// NewServerHandler builds the HTTP API with metrics and event streams.
// The returned close function releases the session store.
func NewServerHandler(ctx context.Context, opts ServeOptions) (http.Handler, func() error, error) {
	logger := createLogger(opts.Config, opts.Debug)

	loader, err := NewLoader(opts.Dir, opts.File)
	if err != nil {
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	streams := httpAdapter.NewStreamManager(logger)
	hooks := metrics.Hooks()
	if opts.Debug {
		hooks = hooks.Merge(observability.LoggingHooks(logger))
	}
	sessions, closeFn, err := NewSessionManager(ctx, opts.Config, loader, logger,
		session.WithLifecycleHooks(hooks),
		session.WithChangeListener(streams.Publish),
	)
	if err != nil {
		return nil, nil, err
	}

	handler, err := httpAdapter.NewHandler(sessions,
		httpAdapter.WithStreams(streams),
		httpAdapter.WithMetrics(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		httpAdapter.WithLogger(logger),
	)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return handler, closeFn, nil
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := createLogger(opts.Config, opts.Debug)

	handler, closeFn, err := NewServerHandler(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := &http.Server{
		Addr:              opts.Config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting turing server", "addr", srv.Addr, "store", opts.Config.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Start shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("turing server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on stdio or SSE.
func ServeMCP(ctx context.Context, opts ServeOptions, transport string, port int) error {
	logger := createLogger(opts.Config, opts.Debug)

	loader, err := NewLoader(opts.Dir, opts.File)
	if err != nil {
		return err
	}
	sessions, closeFn, err := NewSessionManager(ctx, opts.Config, loader, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := mcp.NewServer(sessions, logger)
	switch transport {
	case "stdio":
		logger.Info("Starting turing MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	}
}
