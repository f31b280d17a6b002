// Package observability provides logging setup, Prometheus metrics, OpenTelemetry
// tracing and health endpoints.
//
// # Logging
//
//	log, err := observability.NewLogger(observability.LoggerConfig{Level: "debug", Format: "json"})
//
// # Metrics
//
// Metrics implements registration.Recorder and can be passed to the processor
// directly. Recorders fans out to several recorders, for example Prometheus and
// OpenTelemetry:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	otelMetrics, _ := observability.NewOTelMetrics()
//	recorder := observability.Recorders{metrics, otelMetrics}
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(version, redisClient)
//	checker.AddCheck("run", func(ctx context.Context) error { ... }, true)
//	observability.RegisterHealthRoutes(router, checker)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "langreg",
//	}, log)
//	defer providers.Shutdown(ctx)
package observability
