package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/themis/internal/config"
	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/messaging"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/repository"
	"github.com/UnknownOlympus/themis/internal/server"
	"github.com/UnknownOlympus/themis/internal/services/export"
	"github.com/UnknownOlympus/themis/internal/services/flagging"
	"github.com/UnknownOlympus/themis/internal/services/onboarding"
	"github.com/UnknownOlympus/themis/internal/services/slangs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Dbname)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	feedbackRepo := repository.NewFeedbackRepository(dtb, appMetrics)
	slangRepo := repository.NewSlangRepository(dtb, appMetrics)
	employeeRepo := repository.NewEmployeeRepository(dtb, appMetrics)
	tableRepo := repository.NewTableRepository(dtb, appMetrics)

	sender := messaging.NewTwilioSender(logger, cfg.Messaging.AccountSID, cfg.Messaging.AuthToken)

	api := server.NewAPI(
		logger,
		appMetrics,
		slangs.NewDetector(logger, feedbackRepo, slangRepo, appMetrics),
		flagging.NewFlagger(logger, employeeRepo, cfg.Export.OutputDir, appMetrics),
		export.NewExporter(logger, tableRepo, cfg.Export.OutputDir, appMetrics),
		onboarding.NewNotifier(logger, employeeRepo, sender, cfg.Messaging.FromNumber, appMetrics),
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.StartMonitoringServer(
			gctx, logger, reg, dtb, cfg.Monitoring.Port, cfg.Messaging.HealthURL)
	})

	group.Go(func() error {
		return api.Start(gctx, cfg.HTTP.Port, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.",
		"api_port", cfg.HTTP.Port, "monitoring_port", cfg.Monitoring.Port)

	if err = group.Wait(); err != nil {
		logger.ErrorContext(ctx, "Application stopped with error", sl.Err(err))
		stop()
		dtb.Close()
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Application stopped gracefully...")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{Key: "", Value: slog.Value{}}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{Key: "", Value: slog.Value{}}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified, or was invalid. Logging will be minimal, by default." +
				" Please specify the value of `env`: local, development, production")
	}

	return log
}
