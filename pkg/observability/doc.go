// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging, metrics
// collection, health checks, graceful shutdown and distributed tracing integration.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.ParseLogLevel("info"), os.Stdout)
//	logger.WithField("port", 8080).Info("server started")
//
// Request scoped logging picks up request, user and trace ids:
//
//	observability.FromContext(r.Context(), logger).WithError(err).Error("statistics request failed")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(registry)
//	aggregatorConfig.Observer = metrics.QueryObserver()
//	handler = observability.HTTPMetricsMiddleware(metrics)(handler)
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(version)
//	checker.AddCheck("database", recordStore, true)
//	checker.AddCheck("redis", redisClient, false)
//	observability.RegisterHealthRoutes(mux, checker)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "tally",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
package observability
