package event_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/msmeetings/internal/events"
	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/server"
	"github.com/teemow/msmeetings/internal/tools/batch"
	"github.com/teemow/msmeetings/internal/tools/common"
)

// Event field arguments.
const (
	argIndicoEventID = "indico_event_id"
	argZoomURL       = "zoom_url"
	argSubject       = "subject"
	argStartTime     = "start_time"
	argEndTime       = "end_time"
	argTimeZone      = "timezone"
)

// eventFieldParams are the optional fields an update may carry. Passing a
// field, even as "", writes it.
func eventFieldParams(required bool) []mcp.ToolOption {
	field := func(name, desc string) mcp.ToolOption {
		if required {
			return mcp.WithString(name, mcp.Required(), mcp.Description(desc))
		}
		return mcp.WithString(name, mcp.Description(desc))
	}
	return []mcp.ToolOption{
		mcp.WithString(argIndicoEventID,
			mcp.Required(),
			mcp.Description("Indico event id, used as the subject prefix \"[id] \""),
		),
		field(argZoomURL, "Zoom join URL; sets body, location and onlineMeetingUrl"),
		field(argSubject, "Event title, without the Indico prefix"),
		field(argStartTime, "Start as ISO 8601 local date-time, e.g. 2021-01-01T10:00:00"),
		field(argEndTime, "End as ISO 8601 local date-time"),
		mcp.WithString(argTimeZone,
			mcp.Description("Time zone for start and end (default: "+events.DefaultTimeZone+")"),
		),
	}
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Create an online meeting event for a Zoom meeting"),
		userIDParam(),
	}, eventFieldParams(true)...)
	createOpts = append(createOpts,
		mcp.WithString(common.ArgZoomID,
			mcp.Description("Zoom meeting id to store on the event for later lookup"),
		),
		headersParam(),
	)
	s.AddTool(mcp.NewTool("events_create", createOpts...),
		common.InstrumentedToolHandler("events_create", instrumentation.OperationCreateEvent, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateEvent(ctx, request, sc)
			}))

	updateOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Update fields of a calendar event by its Graph id. Only passed fields change."),
		userIDParam(),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("Graph event id"),
		),
	}, eventFieldParams(false)...)
	updateOpts = append(updateOpts,
		mcp.WithString(common.ArgZoomID,
			mcp.Description("New Zoom meeting id to store on the event"),
		),
		headersParam(),
	)
	s.AddTool(mcp.NewTool("events_update", updateOpts...),
		common.InstrumentedToolHandler("events_update", instrumentation.OperationUpdateEvent, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateEvent(ctx, request, sc)
			}))

	updateByZoomOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Update the calendar event carrying a Zoom meeting id. Only passed fields change."),
		userIDParam(),
		mcp.WithString(common.ArgZoomID,
			mcp.Required(),
			mcp.Description("Zoom meeting id of the event to update"),
		),
	}, eventFieldParams(false)...)
	updateByZoomOpts = append(updateByZoomOpts, headersParam())
	s.AddTool(mcp.NewTool("events_update_by_zoom_id", updateByZoomOpts...),
		common.InstrumentedToolHandler("events_update_by_zoom_id", instrumentation.OperationUpdateEvent, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateEventByZoomID(ctx, request, sc)
			}))

	deleteTool := mcp.NewTool("events_delete",
		mcp.WithDescription("Delete calendar events by Graph id"),
		userIDParam(),
		mcp.WithString(common.ArgEventID,
			mcp.Required(),
			mcp.Description("Graph event id (string) or array of event ids"),
		),
		headersParam(),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandler("events_delete", instrumentation.OperationDeleteEvent, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	deleteByZoomTool := mcp.NewTool("events_delete_by_zoom_id",
		mcp.WithDescription("Delete the calendar events carrying the given Zoom meeting ids"),
		userIDParam(),
		mcp.WithString(common.ArgZoomID,
			mcp.Required(),
			mcp.Description("Zoom meeting id (string) or array of Zoom meeting ids"),
		),
		headersParam(),
	)
	s.AddTool(deleteByZoomTool, common.InstrumentedToolHandler("events_delete_by_zoom_id", instrumentation.OperationDeleteEvent, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEventByZoomID(ctx, request, sc)
		}))
}

// partialParams reads the optional event fields by key presence.
func partialParams(args map[string]interface{}) (events.PartialEventParameters, error) {
	p := events.PartialEventParameters{
		IndicoEventID: common.GetStringArg(args, argIndicoEventID),
	}
	fields := []struct {
		key string
		dst **string
	}{
		{argZoomURL, &p.ZoomURL},
		{argSubject, &p.Subject},
		{argStartTime, &p.StartTime},
		{argEndTime, &p.EndTime},
		{argTimeZone, &p.TimeZone},
		{common.ArgZoomID, &p.ZoomID},
	}
	for _, f := range fields {
		v, err := common.OptionalStringArg(args, f.key)
		if err != nil {
			return p, err
		}
		*f.dst = v
	}
	return p, nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := events.EventParameters{
		TimeZone: common.GetStringArg(args, argTimeZone),
		ZoomID:   common.GetStringArg(args, common.ArgZoomID),
	}
	required := []struct {
		key string
		dst *string
	}{
		{argIndicoEventID, &params.IndicoEventID},
		{argZoomURL, &params.ZoomURL},
		{argSubject, &params.Subject},
		{argStartTime, &params.StartTime},
		{argEndTime, &params.EndTime},
	}
	for _, r := range required {
		if *r.dst, err = common.RequireStringArg(args, r.key); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := sc.Events().CreateEvent(ctx, userID, params, headers)
	if err != nil {
		return errorResult("create event", err), nil
	}
	return jsonResult(ev)
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventID, err := common.RequireStringArg(args, common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params, err := partialParams(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if params.Subject != nil && params.IndicoEventID == "" {
		return mcp.NewToolResultError(argIndicoEventID + " is required when subject is set"), nil
	}
	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := sc.Events().UpdateEvent(ctx, userID, eventID, params, headers)
	if err != nil {
		return errorResult("update event", err), nil
	}
	return jsonResult(ev)
}

func handleUpdateEventByZoomID(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	zoomID, err := common.RequireStringArg(args, common.ArgZoomID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params, err := partialParams(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params.ZoomID = &zoomID
	if params.Subject != nil && params.IndicoEventID == "" {
		return mcp.NewToolResultError(argIndicoEventID + " is required when subject is set"), nil
	}
	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := sc.Events().UpdateEventByZoomID(ctx, userID, params, headers)
	if err != nil {
		return errorResult("update event by zoom id", err), nil
	}
	return jsonResult(ev)
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventIDs, err := batch.ParseStringOrArray(args[common.ArgEventID], common.ArgEventID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	del := func(ctx context.Context, eventID string) (string, error) {
		if err := sc.Events().DeleteEvent(ctx, userID, eventID, headers); err != nil {
			return "", err
		}
		return fmt.Sprintf("Event %s deleted", eventID), nil
	}
	return deleteResult(ctx, "delete event", eventIDs, del), nil
}

func handleDeleteEventByZoomID(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, err := common.RequireStringArg(args, common.ArgUserID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	zoomIDs, err := batch.ParseStringOrArray(args[common.ArgZoomID], common.ArgZoomID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	headers, err := common.GetHeadersArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	del := func(ctx context.Context, zoomID string) (string, error) {
		if err := sc.Events().DeleteEventByZoomID(ctx, userID, zoomID, headers); err != nil {
			return "", err
		}
		return fmt.Sprintf("Event with zoom id %s deleted", zoomID), nil
	}
	return deleteResult(ctx, "delete event by zoom id", zoomIDs, del), nil
}

// deleteResult answers a single id with plain text and several ids with a
// batch summary. A batch is an error only when every id failed.
func deleteResult(ctx context.Context, action string, ids []string, del func(context.Context, string) (string, error)) *mcp.CallToolResult {
	if len(ids) == 1 {
		msg, err := del(ctx, ids[0])
		if err != nil {
			return errorResult(action, err)
		}
		return mcp.NewToolResultText(msg)
	}

	results := batch.ProcessBatch(ctx, ids, del)
	if summary := batch.Summarize(results); summary.Successful == 0 {
		return mcp.NewToolResultError(batch.FormatResults(results))
	}
	return mcp.NewToolResultText(batch.FormatResults(results))
}
