package instrumentation

import "strings"

// Graph user ids are UPNs or object ids. Neither belongs in a metric label,
// so anything user-scoped goes through ExtractUserDomain first.

// ExtractUserDomain returns the lowercased domain of a UPN, or "unknown" for
// object-id style ids and malformed input.
//
//	ExtractUserDomain("room-12@example.org")                   // "example.org"
//	ExtractUserDomain("5b3c8a2e-1f0d-4e6b-9a7c-2d1e0f9b8a7c")  // "unknown"
func ExtractUserDomain(userID string) string {
	if userID == "" {
		return "unknown"
	}

	parts := strings.Split(userID, "@")
	if len(parts) == 2 && parts[1] != "" {
		return strings.ToLower(parts[1])
	}

	return "unknown"
}

// Operation names used as the "operation" label on Graph metrics and spans.
const (
	OperationListEvents   = "list_events"
	OperationGetEvent     = "get_event"
	OperationCreateEvent  = "create_event"
	OperationUpdateEvent  = "update_event"
	OperationDeleteEvent  = "delete_event"
	OperationFindByZoomID = "find_by_zoom_id"
	OperationGetZoomID    = "get_zoom_id"
	OperationUnknown      = "unknown"
)
