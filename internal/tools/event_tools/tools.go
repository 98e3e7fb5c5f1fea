package event_tools

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/msmeetings/internal/events"
	"github.com/teemow/msmeetings/internal/msgraph"
	"github.com/teemow/msmeetings/internal/server"
	"github.com/teemow/msmeetings/internal/tools/common"
)

// RegisterEventTools registers the events tools with the MCP server.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return errors.New("MCP server and server context are required")
	}

	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func userIDParam() mcp.ToolOption {
	return mcp.WithString(common.ArgUserID,
		mcp.Required(),
		mcp.Description("Calendar owner: user principal name or object id"),
	)
}

func headersParam() mcp.ToolOption {
	return mcp.WithObject(common.ArgHeaders,
		mcp.Description("Extra HTTP headers for the Graph request, e.g. {\"Prefer\": \"outlook.timezone=\\\"UTC\\\"\"}. Authorization cannot be overridden."),
	)
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult turns a component error into a tool error with a short hint.
func errorResult(action string, err error) *mcp.CallToolResult {
	var apiErr *msgraph.APIError
	switch {
	case errors.Is(err, events.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
	case errors.Is(err, events.ErrInvalidDateTime):
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v (use ISO 8601, e.g. 2021-01-01T10:00:00)", action, err))
	case errors.As(err, &apiErr):
		msg := fmt.Sprintf("Failed to %s: Graph returned %d", action, apiErr.StatusCode)
		if apiErr.Code != "" {
			msg += " " + apiErr.Code
		}
		if apiErr.Message != "" {
			msg += ": " + apiErr.Message
		}
		if apiErr.RequestID != "" {
			msg += fmt.Sprintf(" (request-id %s)", apiErr.RequestID)
		}
		return mcp.NewToolResultError(msg)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
	}
}
