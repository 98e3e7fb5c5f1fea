package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod     = "method"
	attrStatus     = "status"
	attrStatusCode = "status_code"
	attrOperation  = "operation"
	attrResult     = "result"
	attrTool       = "tool"
	attrUserDomain = "user_domain"
)

// Metrics records Graph traffic, token acquisition, zoom lookups and MCP tool calls.
// A zero Metrics (or nil pointer) is valid and records nothing.
type Metrics struct {
	// Graph API metrics
	graphRequestsTotal   metric.Int64Counter
	graphRequestDuration metric.Float64Histogram

	// Token metrics
	tokenAcquisitionsTotal metric.Int64Counter

	// Zoom reconciliation metrics
	zoomLookupsTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.graphRequestsTotal, err = meter.Int64Counter(
		"graph_api_requests_total",
		metric.WithDescription("Total number of Microsoft Graph API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_api_requests_total counter: %w", err)
	}

	m.graphRequestDuration, err = meter.Float64Histogram(
		"graph_api_request_duration_seconds",
		metric.WithDescription("Microsoft Graph API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_api_request_duration_seconds histogram: %w", err)
	}

	m.tokenAcquisitionsTotal, err = meter.Int64Counter(
		"graph_token_acquisitions_total",
		metric.WithDescription("Total number of access token acquisitions"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_token_acquisitions_total counter: %w", err)
	}

	m.zoomLookupsTotal, err = meter.Int64Counter(
		"zoom_lookups_total",
		metric.WithDescription("Total number of event lookups by Zoom id"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zoom_lookups_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordGraphRequest records one Graph API round trip.
//
// Parameters:
//   - method: HTTP verb (GET, POST, PATCH, DELETE)
//   - operation: low-cardinality operation name (see Operation* constants)
//   - statusCode: HTTP status, or 0 when no response was received
//   - duration: time from request start to response body read
func (m *Metrics) RecordGraphRequest(ctx context.Context, method, operation string, statusCode int, duration time.Duration) {
	if m == nil || m.graphRequestsTotal == nil || m.graphRequestDuration == nil {
		return
	}

	status := StatusSuccess
	if statusCode == 0 || statusCode >= 300 {
		status = StatusError
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
		attribute.String(attrStatusCode, strconv.Itoa(statusCode)),
	}

	m.graphRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.graphRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTokenAcquisition records an access token request.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordTokenAcquisition(ctx context.Context, result string) {
	if m == nil || m.tokenAcquisitionsTotal == nil {
		return
	}

	m.tokenAcquisitionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordZoomLookup records the outcome of resolving a Zoom id to an event.
// Result should be one of: "found", "not_found", "error"
func (m *Metrics) RecordZoomLookup(ctx context.Context, result string) {
	if m == nil || m.zoomLookupsTotal == nil {
		return
	}

	m.zoomLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithUser(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithUser records an MCP tool invocation and, when
// detailed labels are enabled, the domain of the calendar owner it targeted.
func (m *Metrics) RecordToolInvocationWithUser(ctx context.Context, toolName, status, userID string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	if m.detailedLabels && userID != "" {
		attrs = append(attrs, attribute.String(attrUserDomain, ExtractUserDomain(userID)))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
