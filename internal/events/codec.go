package events

// Constant fields sent on every created event.
const (
	bodyContentType       = "text"
	locationType          = "default"
	locationUniqueIDType  = "private"
	onlineMeetingProvider = "unknown"
)

// CreateEventBody builds the POST body for a new online meeting event.
// It fails with a *DateTimeError if StartTime or EndTime is not ISO 8601.
func CreateEventBody(p EventParameters) (Body, error) {
	tz := p.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}

	b := Body{
		"attendees":             []any{},
		"allowNewTimeProposals": false,
		"isOnlineMeeting":       true,
		"onlineMeetingProvider": onlineMeetingProvider,
	}
	setSubject(b, p.IndicoEventID, p.Subject)
	setZoomURL(b, p.ZoomURL)
	if err := setStart(b, p.StartTime, tz); err != nil {
		return nil, err
	}
	if err := setEnd(b, p.EndTime, tz); err != nil {
		return nil, err
	}
	if p.ZoomID != "" {
		setZoomID(b, p.ZoomID)
	}
	return b, nil
}

// CreatePartialEventBody builds a PATCH body holding only the fields present
// in p, mapped exactly as CreateEventBody maps them.
func CreatePartialEventBody(p PartialEventParameters) (Body, error) {
	tz := DefaultTimeZone
	if p.TimeZone != nil {
		tz = *p.TimeZone
	}

	b := Body{}
	if p.ZoomURL != nil {
		setZoomURL(b, *p.ZoomURL)
	}
	if p.Subject != nil {
		setSubject(b, p.IndicoEventID, *p.Subject)
	}
	if p.StartTime != nil {
		if err := setStart(b, *p.StartTime, tz); err != nil {
			return nil, err
		}
	}
	if p.EndTime != nil {
		if err := setEnd(b, *p.EndTime, tz); err != nil {
			return nil, err
		}
	}
	if p.ZoomID != nil {
		setZoomID(b, *p.ZoomID)
	}
	return b, nil
}

// The set* functions below are the single source of the field mapping.
// Both builders go through them.

func setSubject(b Body, indicoEventID, subject string) {
	b["subject"] = "[" + indicoEventID + "] " + subject
}

// setZoomURL writes every field derived from the Zoom URL together.
func setZoomURL(b Body, zoomURL string) {
	b["body"] = ItemBody{
		ContentType: bodyContentType,
		Content:     "Zoom URL: " + zoomURL,
	}
	b["location"] = Location{
		DisplayName:  zoomURL,
		LocationType: locationType,
		UniqueIDType: locationUniqueIDType,
		UniqueID:     zoomURL,
	}
	b["onlineMeetingUrl"] = zoomURL
}

func setStart(b Body, value, tz string) error {
	dt, err := normalizeDateTime("start_time", value)
	if err != nil {
		return err
	}
	b["start"] = DateTimeTimeZone{DateTime: dt, TimeZone: tz}
	return nil
}

func setEnd(b Body, value, tz string) error {
	dt, err := normalizeDateTime("end_time", value)
	if err != nil {
		return err
	}
	b["end"] = DateTimeTimeZone{DateTime: dt, TimeZone: tz}
	return nil
}

func setZoomID(b Body, zoomID string) {
	b["singleValueExtendedProperties"] = []ExtendedProperty{
		{ID: ZoomIDPropertyID, Value: zoomID},
	}
}
