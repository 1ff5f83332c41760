// Package telemetry provides OpenTelemetry initialization for yak runs.
//
// Traces, logs and metrics are exported over OTLP/HTTP when an endpoint is
// configured. Without one the global providers stay no-op and nothing leaves
// the process.
package telemetry
