package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-forecast/internal/api/http"
	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/scheduler"
	"github.com/i474232898/weather-forecast/internal/store"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the forecast HTTP API and the provider probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	reg := observability.NewRegistry()
	a, err := bootstrap(reg, os.Stdout)
	if err != nil {
		return err
	}
	log := a.logger
	cfg := a.cfg

	clock := clockwork.NewRealClock()

	// In-memory probe history with configured retention.
	probes := store.NewMemoryStore(cfg.Probe.MaxHistory, cfg.Probe.MaxAge, clock)

	sched := scheduler.New(cfg.Probe.Locations, cfg.Probe.Interval, a.service, probes, a.metrics, clock, log)
	if err := sched.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start probe scheduler")
		return err
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Batch requests wait on every upstream call.
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())
	app.Use(httpapi.MetricsMiddleware(a.metrics))

	httpapi.RegisterHealth(app, serviceName, a.service, probes)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// API routes.
	httpapi.RegisterRoutes(app, a.service, probes)

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("provider", a.service.ProviderName()).
			Msg("http server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
		return err
	}
	return nil
}
