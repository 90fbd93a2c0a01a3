// Package prometheus exposes engine counters through a client_golang
// Collector.
//
// Counter names are gorecover_*_total and the single histogram is
// gorecover_recovery_latency_seconds. The collector is not registered
// globally; mount [Collector.Handler] or register it on your own registry.
package prometheus
