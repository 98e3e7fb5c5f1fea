// Package server provides the MCP server context and the HTTP surfaces
// around it.
//
// ServerContext is what tool handlers receive: the events component plus
// optional metrics and audit logging.
//
// HTTPServer serves the MCP server over the streamable HTTP transport at
// /mcp, with Kubernetes health endpoints from HealthChecker.
//
// MetricsServer exposes Prometheus metrics on a separate port.
package server
