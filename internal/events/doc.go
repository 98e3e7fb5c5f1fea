// Package events manages online meeting events in Microsoft Graph calendars.
//
// An online meeting event is a calendar event that points at a Zoom meeting:
// its subject is prefixed with the Indico event id, its body and location
// carry the Zoom URL, and the Zoom meeting id is stored out of band in a
// single-value extended property.
//
// Component offers two families of operations. The id-keyed ones (ListEvents,
// GetEvent, CreateEvent, UpdateEvent, DeleteEvent) map one-to-one onto Graph
// requests. The zoom-keyed ones (GetEventByZoomID, UpdateEventByZoomID,
// DeleteEventByZoomID) first resolve the Zoom id to a Graph event id with a
// filtered list request and then delegate. Graph does not index Zoom ids, so
// every zoom-keyed call costs one extra round trip; nothing is cached.
//
// Request bodies come from CreateEventBody and CreatePartialEventBody, which
// share their per-field mapping so a create and a full patch always agree.
package events
