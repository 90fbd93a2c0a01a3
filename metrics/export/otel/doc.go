// Package otel publishes engine counters as OpenTelemetry observable
// instruments.
//
// [NewExporter] registers one Int64ObservableCounter per counter and one
// Int64ObservableGauge per latency bucket, plus gauges for the token cache
// size. A single callback reads [goRecover.Engine.MetricsSnapshot] on each
// collection. Callers own the MeterProvider.
package otel
