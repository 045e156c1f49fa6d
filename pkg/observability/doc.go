// Package observability provides structured logging, Prometheus metrics,
// health checks, OpenTelemetry tracing and graceful shutdown.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("session_id", id).Info("session created")
//
// Loggers are logrus-backed and emit JSON. FromContext attaches the request
// and session IDs stored on a context.
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(registry)
//	metrics.CreditsDebitedTotal.WithLabelValues("generation").Add(5)
//
// HTTPMetricsMiddleware labels requests by mux route template.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(journalDB, redisClient, version)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//	ctx, span := observability.Tracer("orchestrator").Start(ctx, "submit")
package observability
