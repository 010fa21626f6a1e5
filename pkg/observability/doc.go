// Package observability provides structured logging, Prometheus metrics,
// health checks, OpenTelemetry setup and graceful shutdown for authgate.
//
// # Structured Logging
//
// Logger wraps logrus with a JSON formatter:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("user_id", id).Info("user registered")
//
// Request-scoped loggers carry the request and user ids:
//
//	observability.FromContext(r.Context()).WithError(err).Error("login failed")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	metrics.RecordAuthOperation("login", "success")
//
// All Record* helpers accept a nil *Metrics so components can run without
// instrumentation in tests.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	observability.RegisterHealthRoutes(mux, checker)
//
// # Shutdown
//
//	sm := observability.NewShutdownManager(logger, 30*time.Second)
//	sm.AddServer(apiServer)
//	sm.RegisterShutdownFunc("database", func(context.Context) error { return db.Close() })
//	sm.WaitForSignal(ctx)
package observability
