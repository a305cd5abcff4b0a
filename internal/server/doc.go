// Package server holds the shared runtime state for the MCP server: the
// server context with its lazily created Calendar client and dispatch pool,
// and the standalone Prometheus metrics server.
package server
