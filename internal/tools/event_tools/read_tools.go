package event_tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/server"
	"github.com/teemow/msmeetings/internal/tools/common"
)

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listTool := mcp.NewTool("events_list",
		mcp.WithDescription("List events in a user's default calendar"),
		userIDParam(),
		mcp.WithString("filter",
			mcp.Description("OData $filter expression, e.g. \"subject eq '[123] Seminar'\""),
		),
		mcp.WithNumber("top",
			mcp.Description("Maximum number of events to return ($top)"),
		),
		headersParam(),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("events_list", instrumentation.OperationListEvents, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	getTool := mcp.NewTool("events_get",
		mcp.WithDescription("Get one calendar event by its Graph id"),
		userIDParam(),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("Graph event id"),
		),
		headersParam(),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("events_get", instrumentation.OperationGetEvent, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	getByZoomTool := mcp.NewTool("events_get_by_zoom_id",
		mcp.WithDescription("Find the calendar event carrying a Zoom meeting id"),
		userIDParam(),
		mcp.WithString(common.ArgZoomID,
			mcp.Required(),
			mcp.Description("Zoom meeting id"),
		),
		headersParam(),
	)
	s.AddTool(getByZoomTool, common.InstrumentedToolHandler("events_get_by_zoom_id", instrumentation.OperationFindByZoomID, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEventByZoomID(ctx, request, sc)
		}))

	getZoomIDTool := mcp.NewTool("events_get_zoom_id",
		mcp.WithDescription("Read the Zoom meeting id stored on a calendar event"),
		userIDParam(),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("Graph event id"),
		),
		headersParam(),
	)
	s.AddTool(getZoomIDTool, common.InstrumentedToolHandler("events_get_zoom_id", instrumentation.OperationGetZoomID, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEventZoomID(ctx, request, sc)
		}))
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if filter := common.GetStringArg(args, "filter"); filter != "" {
		query.Set("$filter", filter)
	}
	if top, ok := args["top"].(float64); ok {
		if top < 1 {
			return mcp.NewToolResultError("top must be at least 1"), nil
		}
		query.Set("$top", strconv.Itoa(int(top)))
	}

	list, err := sc.Events().ListEvents(ctx, userID, query, headers)
	if err != nil {
		return errorResult("list events", err), nil
	}
	return jsonResult(list)
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequireStringArg(args, common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := sc.Events().GetEvent(ctx, userID, eventID, nil, headers)
	if err != nil {
		return errorResult("get event", err), nil
	}
	return jsonResult(ev)
}

func handleGetEventByZoomID(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	zoomID, err := common.RequireStringArg(args, common.ArgZoomID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := sc.Events().GetEventByZoomID(ctx, userID, zoomID, headers)
	if err != nil {
		return errorResult("find event by zoom id", err), nil
	}
	return jsonResult(ev)
}

func handleGetEventZoomID(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequireStringArg(args, common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	zoomID, err := sc.Events().GetEventZoomID(ctx, userID, eventID, headers)
	if err != nil {
		return errorResult("read zoom id", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Zoom ID: %s", zoomID)), nil
}
