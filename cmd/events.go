package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/teemow/msmeetings/internal/events"
)

// eventsOptions are the flags shared by every events subcommand.
type eventsOptions struct {
	graph   *graphOptions
	user    string
	headers []string
}

// eventFieldFlags are the event fields settable from the command line.
type eventFieldFlags struct {
	indicoEventID string
	zoomURL       string
	subject       string
	startTime     string
	endTime       string
	timeZone      string
	zoomID        string
}

func newEventsCmd(graph *graphOptions) *cobra.Command {
	opts := &eventsOptions{graph: graph}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage online meeting events in a user's calendar",
		Long: `Create, read, update and delete online meeting events in a user's default
calendar. Events are addressed by Graph id, or by the Zoom meeting id stored
in their ZoomId extended property.

Results are printed as JSON.`,
	}
	cmd.PersistentFlags().StringVar(&opts.user, "user", "", "Calendar owner: user principal name or object id (required)")
	cmd.PersistentFlags().StringArrayVar(&opts.headers, "header", nil, "Extra request header as key=value (repeatable)")

	cmd.AddCommand(
		newEventsListCmd(opts),
		newEventsGetCmd(opts),
		newEventsCreateCmd(opts),
		newEventsUpdateCmd(opts),
		newEventsDeleteCmd(opts),
		newEventsGetByZoomIDCmd(opts),
		newEventsUpdateByZoomIDCmd(opts),
		newEventsDeleteByZoomIDCmd(opts),
		newEventsZoomIDCmd(opts),
	)
	return cmd
}

// run builds the events component and calls fn with the parsed headers.
func (o *eventsOptions) run(cmd *cobra.Command, fn func(ctx context.Context, c *events.Component, headers http.Header) (any, error)) error {
	if strings.TrimSpace(o.user) == "" {
		return fmt.Errorf("--user is required")
	}
	headers, err := parseHeaderFlags(o.headers)
	if err != nil {
		return err
	}

	stack, err := newGraphStack(*o.graph, newLogger(o.graph.debug), nil)
	if err != nil {
		return err
	}

	result, err := fn(cmd.Context(), stack.component, headers)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result)
}

// printResult writes strings as lines and everything else as indented JSON.
func printResult(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseHeaderFlags turns repeated key=value flags into request headers.
func parseHeaderFlags(values []string) (http.Header, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make(http.Header, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q (expected key=value)", v)
		}
		headers.Add(key, value)
	}
	return headers, nil
}

func addEventFieldFlags(cmd *cobra.Command, f *eventFieldFlags) {
	cmd.Flags().StringVar(&f.indicoEventID, "indico-event-id", "", "Indico event id, used as the subject prefix")
	cmd.Flags().StringVar(&f.zoomURL, "zoom-url", "", "Zoom join URL")
	cmd.Flags().StringVar(&f.subject, "subject", "", "Event title, without the Indico prefix")
	cmd.Flags().StringVar(&f.startTime, "start", "", "Start as ISO 8601 local date-time, e.g. 2021-01-01T10:00:00")
	cmd.Flags().StringVar(&f.endTime, "end", "", "End as ISO 8601 local date-time")
	cmd.Flags().StringVar(&f.timeZone, "timezone", "", "Time zone for start and end (default: "+events.DefaultTimeZone+")")
}

// partial returns the fields whose flags were set on the command line.
func (f *eventFieldFlags) partial(cmd *cobra.Command) events.PartialEventParameters {
	set := func(name, value string) *string {
		if cmd.Flags().Changed(name) {
			return events.Ptr(value)
		}
		return nil
	}
	return events.PartialEventParameters{
		IndicoEventID: f.indicoEventID,
		ZoomURL:       set("zoom-url", f.zoomURL),
		Subject:       set("subject", f.subject),
		StartTime:     set("start", f.startTime),
		EndTime:       set("end", f.endTime),
		TimeZone:      set("timezone", f.timeZone),
		ZoomID:        set("zoom-id", f.zoomID),
	}
}

func validatePartial(p events.PartialEventParameters) error {
	if p.Subject != nil && p.IndicoEventID == "" {
		return fmt.Errorf("--indico-event-id is required when --subject is set")
	}
	return nil
}

func newEventsListCmd(o *eventsOptions) *cobra.Command {
	var (
		filter string
		top    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events in the user's calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				query := url.Values{}
				if filter != "" {
					query.Set("$filter", filter)
				}
				if top > 0 {
					query.Set("$top", strconv.Itoa(top))
				}
				return c.ListEvents(ctx, o.user, query, headers)
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "OData $filter expression")
	cmd.Flags().IntVar(&top, "top", 0, "Maximum number of events ($top)")
	return cmd
}

func newEventsGetCmd(o *eventsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Get an event by Graph id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				return c.GetEvent(ctx, o.user, args[0], nil, headers)
			})
		},
	}
}

func newEventsCreateCmd(o *eventsOptions) *cobra.Command {
	var f eventFieldFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an online meeting event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := events.EventParameters{
				IndicoEventID: f.indicoEventID,
				ZoomURL:       f.zoomURL,
				Subject:       f.subject,
				StartTime:     f.startTime,
				EndTime:       f.endTime,
				TimeZone:      f.timeZone,
				ZoomID:        f.zoomID,
			}
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				return c.CreateEvent(ctx, o.user, params, headers)
			})
		},
	}
	addEventFieldFlags(cmd, &f)
	cmd.Flags().StringVar(&f.zoomID, "zoom-id", "", "Zoom meeting id to store on the event")
	for _, name := range []string{"indico-event-id", "zoom-url", "subject", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newEventsUpdateCmd(o *eventsOptions) *cobra.Command {
	var f eventFieldFlags
	cmd := &cobra.Command{
		Use:   "update EVENT_ID",
		Short: "Update an event by Graph id; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := f.partial(cmd)
			if err := validatePartial(params); err != nil {
				return err
			}
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				return c.UpdateEvent(ctx, o.user, args[0], params, headers)
			})
		},
	}
	addEventFieldFlags(cmd, &f)
	cmd.Flags().StringVar(&f.zoomID, "zoom-id", "", "New Zoom meeting id to store on the event")
	return cmd
}

func newEventsDeleteCmd(o *eventsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event by Graph id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				if err := c.DeleteEvent(ctx, o.user, args[0], headers); err != nil {
					return nil, err
				}
				return fmt.Sprintf("Event %s deleted", args[0]), nil
			})
		},
	}
}

func newEventsGetByZoomIDCmd(o *eventsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get-by-zoom-id ZOOM_ID",
		Short: "Find the event carrying a Zoom meeting id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				return c.GetEventByZoomID(ctx, o.user, args[0], headers)
			})
		},
	}
}

func newEventsUpdateByZoomIDCmd(o *eventsOptions) *cobra.Command {
	var f eventFieldFlags
	cmd := &cobra.Command{
		Use:   "update-by-zoom-id ZOOM_ID",
		Short: "Update the event carrying a Zoom meeting id; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := f.partial(cmd)
			params.ZoomID = events.Ptr(args[0])
			if err := validatePartial(params); err != nil {
				return err
			}
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				return c.UpdateEventByZoomID(ctx, o.user, params, headers)
			})
		},
	}
	addEventFieldFlags(cmd, &f)
	return cmd
}

func newEventsDeleteByZoomIDCmd(o *eventsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-by-zoom-id ZOOM_ID",
		Short: "Delete the event carrying a Zoom meeting id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				if err := c.DeleteEventByZoomID(ctx, o.user, args[0], headers); err != nil {
					return nil, err
				}
				return fmt.Sprintf("Event with zoom id %s deleted", args[0]), nil
			})
		},
	}
}

func newEventsZoomIDCmd(o *eventsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "zoom-id EVENT_ID",
		Short: "Print the Zoom meeting id stored on an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, c *events.Component, headers http.Header) (any, error) {
				return c.GetEventZoomID(ctx, o.user, args[0], headers)
			})
		},
	}
}
