// Package instrumentation wires OpenTelemetry metrics with a Prometheus
// exporter. It records tool invocations, Calendar API operations, and OAuth
// activity. When disabled, all recorders are no-ops so callers never need to
// branch on whether metrics are on.
package instrumentation
