// Package app wires the application together: configuration, the
// structured logger, the aggregation services, the Chi router with its
// middleware chain, and the HTTP server with graceful shutdown.
package app
