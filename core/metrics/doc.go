// Package metrics defines the observability surface of the scheduler. Sinks
// receive day-level outcomes and per-stage solve attempts; concrete
// implementations (Prometheus, InfluxDB) live in infra/metrics and are
// registered through the factory registry.
package metrics
