// Package observability configures the process-wide slog logger.
//
// Records always go to a primary handler chosen by log format: GitHub Actions
// workflow commands, text or JSON on stderr. When a telemetry exporter is
// configured, records are additionally bridged to an OpenTelemetry
// LoggerProvider (stdout, OTLP/HTTP or OTLP/gRPC) with a minimum severity filter.
//
// Every record carries a run_id attribute to correlate the lines of one login.
package observability
