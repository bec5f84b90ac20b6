// Package main is the entry point for the Capsule pricing API server.
//
// Startup sequence: load configuration (env, dotenv, SSM), connect the
// database pool, warm the plan catalog cache, wire the payment provider
// client, and mount the HTTP routes on the core chassis. The plan catalog
// warm-up is best effort; a failed fetch leaves the service running on the
// built-in plan tables.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"capsule/internal/api/handlers"
	"capsule/internal/catalog"
	"capsule/internal/checkout"
	"capsule/internal/config"
	"capsule/internal/core"
	"capsule/internal/db"
	"capsule/internal/external"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	// SSM resolution is bypassed when APP_ENV=local; the provider is lazy and
	// only dials AWS when a parameter binding actually needs resolving.
	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("capsule pricing API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database pool.
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	// Plan catalog: fetch the remote plan lists once and cache them. With no
	// upstream configured the catalog serves the built-in tables.
	var fetcher catalog.PlanFetcher
	if cfg.Catalog.PlanServiceURL != "" {
		fetcher = external.NewPlanServiceClient(
			&http.Client{Timeout: cfg.Catalog.Timeout},
			external.PlanServiceConfig{
				BaseURL:   cfg.Catalog.PlanServiceURL,
				UserAgent: cfg.Catalog.UserAgent,
				Logger:    logger,
			},
		)
	}
	plans := catalog.NewSource(fetcher, logger)
	plans.Warm(ctx)

	// Payment provider.
	paypal := external.NewPayPalClient(
		&http.Client{Timeout: 30 * time.Second},
		external.PayPalConfig{
			ClientID:  cfg.Payment.PayPalClientID,
			Secret:    cfg.Payment.PayPalSecret,
			BaseURL:   cfg.Payment.PayPalAPIBase,
			ReturnURL: cfg.Payment.ReturnURL,
			CancelURL: cfg.Payment.CancelURL,
			Logger:    logger,
		},
	)

	purchases := db.NewPurchaseRepo(pool, logger)
	checkoutSvc := checkout.NewService(purchases, paypal, plans, logger)

	// HTTP chassis.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	metrics := core.NewPrometheusMetrics("capsule")
	srv.Metrics = metrics
	srv.MetricsHandler = metrics.Handler()
	srv.HealthProbes = []core.HealthProbe{db.NewHealthProbe(pool)}

	plansHandler := handlers.NewPlansHandler(plans, logger)
	quoteHandler := handlers.NewQuoteHandler(plans, cfg.Server.CheckoutURL, srv.Validator, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutSvc, srv.Validator, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { plansHandler.RegisterRoutes(r) },
		func(r chi.Router) { quoteHandler.RegisterRoutes(r) },
		func(r chi.Router) { checkoutHandler.RegisterRoutes(r) },
	)

	srv.MountRoutes()

	return serveHTTP(ctx, srv, cfg, logger)
}

// serveHTTP runs the HTTP server until the context is cancelled, then drains
// in-flight requests within the configured shutdown deadline.
func serveHTTP(ctx context.Context, srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("initiating graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
