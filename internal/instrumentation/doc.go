// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for msmeetings.
//
// # Metrics
//
// Graph API:
//   - graph_api_requests_total: requests by method, operation, status and status_code
//   - graph_api_request_duration_seconds: request latency
//   - graph_token_acquisitions_total: client-credentials token fetches by result
//
// Zoom reconciliation:
//   - zoom_lookups_total: zoom-id lookups by result (found, not_found, error)
//
// MCP tools:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//
// # Tracing
//
// Every Graph request gets a client span named graph.<operation>. MCP tool
// calls get a server span named tool.<name>.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - OTEL_SERVICE_NAME (default: msmeetings)
//
// # Example
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	client, err := msgraph.NewClient(cfg, msgraph.WithMetrics(provider.Metrics()))
package instrumentation
