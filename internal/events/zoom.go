package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/logging"
)

// ZoomFilter returns the OData $filter expression that selects events
// carrying the given zoom id.
type ZoomFilter func(zoomID string) string

// ExtendedPropertyFilter matches events whose ZoomId extended property
// equals zoomID.
func ExtendedPropertyFilter(zoomID string) string {
	return fmt.Sprintf("singleValueExtendedProperties/Any(ep: ep/id eq '%s' and ep/value eq '%s')",
		odataQuote(ZoomIDPropertyID), odataQuote(zoomID))
}

// SubjectFilter matches events whose subject equals zoomID, for calendars
// where the zoom id is kept in the subject instead of a property.
func SubjectFilter(zoomID string) string {
	return fmt.Sprintf("subject eq '%s'", odataQuote(zoomID))
}

// odataQuote escapes a string literal for an OData expression.
func odataQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// expandZoomID asks Graph to include the ZoomId property in the response.
func expandZoomID() string {
	return fmt.Sprintf("singleValueExtendedProperties($filter=id eq '%s')", odataQuote(ZoomIDPropertyID))
}

// GetEventByZoomID returns the event in userID's calendar that carries zoomID.
//
// A reported count of zero fails with *NotFoundError. Otherwise the first
// listed event is returned as is; when Graph reports more than one match
// the rest are ignored.
func (c *Component) GetEventByZoomID(ctx context.Context, userID, zoomID string, headers http.Header) (*Event, error) {
	if zoomID == "" {
		return nil, ErrMissingZoomID
	}

	query := url.Values{}
	query.Set("$count", "true")
	query.Set("$filter", c.zoomFilter(zoomID))
	query.Set("$expand", expandZoomID())

	list, err := c.list(ctx, instrumentation.OperationFindByZoomID, userID, query, headers)
	if err != nil {
		c.metrics.RecordZoomLookup(ctx, instrumentation.LookupError)
		return nil, err
	}

	count := len(list.Value)
	if list.Count != nil {
		count = *list.Count
	}
	if count == 0 || len(list.Value) == 0 {
		c.metrics.RecordZoomLookup(ctx, instrumentation.LookupNotFound)
		c.logger.Debug("no event for zoom id",
			logging.UserHash(userID),
			logging.ZoomID(zoomID))
		return nil, &NotFoundError{UserID: userID, ZoomID: zoomID}
	}

	if count > 1 {
		c.logger.Warn("zoom id matches more than one event, using the first",
			logging.UserHash(userID),
			logging.ZoomID(zoomID),
			"matches", count)
	}
	c.metrics.RecordZoomLookup(ctx, instrumentation.LookupFound)

	ev := list.Value[0]
	return &ev, nil
}

// UpdateEventByZoomID resolves params.ZoomID to an event and patches it.
// Exactly one list request and one PATCH are sent, both with headers.
// A failed lookup is returned unchanged.
func (c *Component) UpdateEventByZoomID(ctx context.Context, userID string, params PartialEventParameters, headers http.Header) (*Event, error) {
	if params.ZoomID == nil || *params.ZoomID == "" {
		return nil, ErrMissingZoomID
	}

	ev, err := c.GetEventByZoomID(ctx, userID, *params.ZoomID, headers)
	if err != nil {
		return nil, err
	}
	return c.UpdateEvent(ctx, userID, ev.ID, params, headers)
}

// DeleteEventByZoomID resolves zoomID to an event and deletes it.
func (c *Component) DeleteEventByZoomID(ctx context.Context, userID, zoomID string, headers http.Header) error {
	ev, err := c.GetEventByZoomID(ctx, userID, zoomID, headers)
	if err != nil {
		return err
	}
	return c.DeleteEvent(ctx, userID, ev.ID, headers)
}

// GetEventZoomID reads the zoom id stored on an event.
// It fails with ErrZoomIDNotFound when the event has no ZoomId property.
func (c *Component) GetEventZoomID(ctx context.Context, userID, eventID string, headers http.Header) (string, error) {
	query := url.Values{}
	query.Set("$expand", expandZoomID())

	ev, err := c.get(ctx, instrumentation.OperationGetZoomID, userID, eventID, query, headers)
	if err != nil {
		return "", err
	}

	zoomID, ok := ev.ZoomID()
	if !ok {
		return "", fmt.Errorf("event %s: %w", eventID, ErrZoomIDNotFound)
	}
	return zoomID, nil
}

// IsNotFound reports whether err means a zoom id matched no event.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
