// Package metrics defines the Prometheus collectors for mediafind.
//
// All collectors are registered via promauto at package init and exported
// as package-level variables. The metrics server exposes them on a separate
// port from the application (see METRICS_PORT).
package metrics
