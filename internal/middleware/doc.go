// Package middleware provides HTTP middleware: request logging and
// Prometheus metrics collection.
package middleware
