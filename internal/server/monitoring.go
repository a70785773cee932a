package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// NewMonitoringHandler exposes the metrics of the registry on /metrics and the health checks on /healthz.
func NewMonitoringHandler(log *slog.Logger, gatherer prometheus.Gatherer, db DBPinger, apiURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.Handle("GET /healthz", NewHealthChecker(db, apiURL, log))

	return mux
}

// StartMonitoringServer serves metrics and health checks until ctx is cancelled.
func StartMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	gatherer prometheus.Gatherer,
	db DBPinger,
	port int,
	apiURL string,
) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewMonitoringHandler(log, gatherer, db, apiURL),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return serve(ctx, log.With(slog.String("server", "monitoring")), srv)
}

// serve runs srv and shuts it down gracefully once ctx is done.
func serve(ctx context.Context, log *slog.Logger, srv *http.Server) error {
	errCh := make(chan error, 1)

	go func() {
		log.InfoContext(ctx, "Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Server shutdown failed", sl.Err(err))
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.InfoContext(ctx, "Server stopped")
	return nil
}
