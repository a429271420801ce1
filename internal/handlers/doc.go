// Package handlers implements the HTTP API: metadata search, on-demand
// thumbnail and preview derivatives, pre-transcoded video lookup, index
// stats, rescan triggering, and health endpoints.
//
// Every media path taken from a request URL is resolved through the
// path guard before any filesystem access, so the API can only touch
// files under the scan directory.
package handlers
