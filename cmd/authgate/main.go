package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/authgate/pkg/api"
	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/config"
	"github.com/platinummonkey/authgate/pkg/middleware"
	"github.com/platinummonkey/authgate/pkg/observability"
)

var version = "dev"

func main() {
	configFile := flag.String("config", os.Getenv(config.ConfigFileEnv), "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("authgate exited with error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", "authgate")
	defer observability.RecoverPanic(logger, "authgate")

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	shutdown.RegisterShutdownFunc("otel", otelProviders.Shutdown)

	// Setup failures release whatever was registered so far
	abort := func(err error) error {
		if shutdownErr := shutdown.Shutdown(context.Background()); shutdownErr != nil {
			logger.WithError(shutdownErr).Warn("Cleanup after failed startup was incomplete")
		}
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	backend, err := openBackend(ctx, cfg.Storage, logger, metrics)
	if err != nil {
		return abort(fmt.Errorf("failed to initialize user store: %w", err))
	}
	shutdown.RegisterShutdownFunc("storage", func(context.Context) error {
		return backend.Close()
	})

	tokens, err := auth.NewTokenManager([]byte(cfg.Auth.SigningKey), cfg.Auth.TokenTTL)
	if err != nil {
		return abort(fmt.Errorf("failed to create token manager: %w", err))
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	audit := auth.NewAuditLogger(logger)

	authMiddleware := middleware.NewAuthMiddleware(tokens, backend.store,
		middleware.WithLogger(logger),
		middleware.WithMetrics(metrics),
		middleware.WithAuditLogger(audit),
		middleware.WithCookieName(cfg.Auth.CookieName),
	)

	handlers := api.NewAuthHandlers(api.AuthDeps{
		Store:      backend.store,
		Hasher:     hasher,
		Tokens:     tokens,
		Middleware: authMiddleware,
		Cookies: api.CookieConfig{
			Name:   cfg.Auth.CookieName,
			TTL:    cfg.Auth.TokenTTL,
			Secure: cfg.Auth.SecureCookies(),
		},
		Logger:  logger,
		Metrics: metrics,
		Audit:   audit,
	})

	server := api.NewServer(logger, metrics, api.ServerOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		Tracing:        cfg.Observability.OTelEnabled,
	}, handlers)

	apiServer := newHTTPServer(cfg.Server, cfg.Server.Port, server, logger)

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux,
		observability.NewHealthChecker(backend.db, backend.redis).WithVersion(version))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := newHTTPServer(cfg.Server, cfg.Server.HealthPort, healthMux, logger)

	shutdown.AddServer(apiServer)
	shutdown.AddServer(healthServer)

	if backend.db != nil && metrics != nil {
		scheduler, err := scheduleDBStats(cfg.Observability.DBStatsSchedule, backend, metrics, logger)
		if err != nil {
			return abort(err)
		}
		scheduler.Start()
		shutdown.RegisterShutdownFunc("db-stats", func(ctx context.Context) error {
			select {
			case <-scheduler.Stop().Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("Starting authgate API server")
		return serve(apiServer)
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Starting health server")
		return serve(healthServer)
	})
	g.Go(func() error {
		// Returns on a signal, or when a listener fails and cancels gctx
		return shutdown.WaitForSignal(gctx)
	})

	return g.Wait()
}

// newHTTPServer applies the configured timeouts and routes net/http's own
// errors (TLS handshakes, panics outside handlers) into the structured log.
func newHTTPServer(cfg config.ServerConfig, port string, handler http.Handler, logger *observability.Logger) *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     logger.StdLogger(),
	}
}

// serve runs srv until it is shut down. A clean shutdown is not an error.
func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server %s: %w", srv.Addr, err)
	}
	return nil
}

// scheduleDBStats samples the connection pool into the Prometheus gauges
func scheduleDBStats(spec string, b *backend, metrics *observability.Metrics, logger *observability.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		metrics.RecordDBStats(b.db.Stats())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule DB stats collection %q: %w", spec, err)
	}
	logger.WithField("schedule", spec).Debug("DB stats collection scheduled")
	return c, nil
}
