// Package event_tools exposes the events component as MCP tools.
//
// Read tools (events_list, events_get, events_get_by_zoom_id,
// events_get_zoom_id) are always registered. Tools that change a calendar
// are only registered when the server runs with write operations enabled.
package event_tools
