package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/server"
)

// ToolHandler is the mcp-go tool handler signature.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a span, metrics and
// audit logging. The audit record targets the user_id, event_id and
// zoom_id arguments of the call.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler("events_get", instrumentation.OperationGetEvent, sc, handler))
func InstrumentedToolHandler(
	toolName string,
	operation string,
	sc *server.ServerContext,
	handler ToolHandler,
) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		userID := GetUserFromArgs(args)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithTool(toolName).
			WithOperation(operation).
			WithUser(userID).
			WithEventID(GetStringArg(args, ArgEventID)).
			WithZoomID(GetStringArg(args, ArgZoomID)).
			Build()
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)
		defer span.End()

		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithOperation(operation).
			WithTarget(userID, GetStringArg(args, ArgEventID), GetStringArg(args, ArgZoomID)).
			WithSpanContext(ctx)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			span.SetAttributes(attribute.Bool(instrumentation.SpanAttrToolError, true))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocationWithUser(ctx, toolName, status, userID, duration)
		auditLogger.LogToolInvocation(invocation)

		return result, err
	}
}
