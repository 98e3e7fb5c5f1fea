package events

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/logging"
	"github.com/teemow/msmeetings/internal/msgraph"
)

// Component manages online meeting events in users' Graph calendars.
// It holds no mutable state and is safe for concurrent use when its
// Requester is.
type Component struct {
	api        msgraph.Requester
	logger     logging.Logger
	metrics    *instrumentation.Metrics
	zoomFilter ZoomFilter
}

// Option configures a Component.
type Option func(*Component)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l logging.Logger) Option {
	return func(c *Component) { c.logger = l }
}

// WithMetrics records zoom lookup outcomes.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Component) { c.metrics = m }
}

// WithZoomFilter changes how zoom ids are matched on the server.
// The default is ExtendedPropertyFilter.
func WithZoomFilter(f ZoomFilter) Option {
	return func(c *Component) { c.zoomFilter = f }
}

// NewComponent creates a Component that sends its requests through api.
func NewComponent(api msgraph.Requester, opts ...Option) *Component {
	c := &Component{
		api:        api,
		zoomFilter: ExtendedPropertyFilter,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.DefaultLogger()
	}
	return c
}

func eventsPath(userID string) string {
	return "/users/" + url.PathEscape(userID) + "/calendar/events"
}

func eventPath(userID, eventID string) string {
	return eventsPath(userID) + "/" + url.PathEscape(eventID)
}

// ListEvents lists events in the user's default calendar. query carries
// optional OData parameters such as $filter, $top or $count.
func (c *Component) ListEvents(ctx context.Context, userID string, query url.Values, headers http.Header) (*EventList, error) {
	return c.list(ctx, instrumentation.OperationListEvents, userID, query, headers)
}

func (c *Component) list(ctx context.Context, operation, userID string, query url.Values, headers http.Header) (*EventList, error) {
	resp, err := c.api.Get(msgraph.WithOperation(ctx, operation), eventsPath(userID), query, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var list EventList
	if err := resp.JSON(&list); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return &list, nil
}

// GetEvent fetches one event by its Graph id.
func (c *Component) GetEvent(ctx context.Context, userID, eventID string, query url.Values, headers http.Header) (*Event, error) {
	return c.get(ctx, instrumentation.OperationGetEvent, userID, eventID, query, headers)
}

func (c *Component) get(ctx context.Context, operation, userID, eventID string, query url.Values, headers http.Header) (*Event, error) {
	resp, err := c.api.Get(msgraph.WithOperation(ctx, operation), eventPath(userID, eventID), query, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}

	var ev Event
	if err := resp.JSON(&ev); err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	return &ev, nil
}

// CreateEvent creates an online meeting event in the user's calendar.
func (c *Component) CreateEvent(ctx context.Context, userID string, params EventParameters, headers http.Header) (*Event, error) {
	body, err := CreateEventBody(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build event body: %w", err)
	}

	resp, err := c.api.Post(msgraph.WithOperation(ctx, instrumentation.OperationCreateEvent), eventsPath(userID), body, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	var ev Event
	if err := resp.JSON(&ev); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	c.logger.Info("event created",
		logging.UserHash(userID),
		logging.EventID(ev.ID),
		logging.ZoomID(params.ZoomID))
	return &ev, nil
}

// UpdateEvent patches the event with the fields present in params.
func (c *Component) UpdateEvent(ctx context.Context, userID, eventID string, params PartialEventParameters, headers http.Header) (*Event, error) {
	body, err := CreatePartialEventBody(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build event body: %w", err)
	}

	resp, err := c.api.Patch(msgraph.WithOperation(ctx, instrumentation.OperationUpdateEvent), eventPath(userID, eventID), body, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}

	var ev Event
	if err := resp.JSON(&ev); err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}

	c.logger.Info("event updated",
		logging.UserHash(userID),
		logging.EventID(eventID),
		"fields", len(body))
	return &ev, nil
}

// DeleteEvent deletes the event. Graph answers 204 No Content.
func (c *Component) DeleteEvent(ctx context.Context, userID, eventID string, headers http.Header) error {
	if _, err := c.api.Delete(msgraph.WithOperation(ctx, instrumentation.OperationDeleteEvent), eventPath(userID, eventID), headers); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}

	c.logger.Info("event deleted",
		logging.UserHash(userID),
		logging.EventID(eventID))
	return nil
}
