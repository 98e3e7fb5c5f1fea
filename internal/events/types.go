package events

import (
	"github.com/goccy/go-json"
)

// DefaultTimeZone is used for start and end when no time zone is given.
const DefaultTimeZone = "Europe/Zurich"

// EventParameters describes a new online meeting event.
type EventParameters struct {
	IndicoEventID string
	ZoomURL       string
	Subject       string

	// StartTime and EndTime are ISO 8601 local or offset date-times.
	StartTime string
	EndTime   string

	// TimeZone is a Windows or IANA zone name; empty means DefaultTimeZone.
	TimeZone string

	// ZoomID, when set, is stored in the ZoomId extended property so the
	// event can later be found with GetEventByZoomID.
	ZoomID string
}

// Partial returns the equivalent PartialEventParameters with every field present.
// TimeZone and ZoomID stay absent when empty, matching how the full body treats them.
func (p EventParameters) Partial() PartialEventParameters {
	out := PartialEventParameters{
		IndicoEventID: p.IndicoEventID,
		ZoomURL:       Ptr(p.ZoomURL),
		Subject:       Ptr(p.Subject),
		StartTime:     Ptr(p.StartTime),
		EndTime:       Ptr(p.EndTime),
	}
	if p.TimeZone != "" {
		out.TimeZone = Ptr(p.TimeZone)
	}
	if p.ZoomID != "" {
		out.ZoomID = Ptr(p.ZoomID)
	}
	return out
}

// PartialEventParameters describes a patch. A nil field is absent and left
// untouched; a pointer to "" is present and written.
type PartialEventParameters struct {
	// IndicoEventID prefixes the subject when Subject is present.
	IndicoEventID string

	ZoomURL   *string
	Subject   *string
	StartTime *string
	EndTime   *string
	TimeZone  *string

	// ZoomID is written to the extended property when present. The
	// zoom-keyed update also uses it to find the event.
	ZoomID *string
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Body is a Graph request body.
type Body map[string]any

// ItemBody is Graph's itemBody resource.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// DateTimeTimeZone is Graph's dateTimeTimeZone resource.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Location is the subset of Graph's location resource we write.
type Location struct {
	DisplayName  string `json:"displayName"`
	LocationType string `json:"locationType,omitempty"`
	UniqueIDType string `json:"uniqueIdType,omitempty"`
	UniqueID     string `json:"uniqueId,omitempty"`
}

// ExtendedProperty is a singleValueLegacyExtendedProperty.
type ExtendedProperty struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Event is a Graph calendar event as returned by the API. Only the fields
// this package reads are typed; Raw keeps the full provider document.
type Event struct {
	ID                    string             `json:"id,omitempty"`
	Subject               string             `json:"subject,omitempty"`
	Body                  *ItemBody          `json:"body,omitempty"`
	Start                 *DateTimeTimeZone  `json:"start,omitempty"`
	End                   *DateTimeTimeZone  `json:"end,omitempty"`
	Location              *Location          `json:"location,omitempty"`
	IsOnlineMeeting       bool               `json:"isOnlineMeeting,omitempty"`
	OnlineMeetingProvider string             `json:"onlineMeetingProvider,omitempty"`
	OnlineMeetingURL      string             `json:"onlineMeetingUrl,omitempty"`
	WebLink               string             `json:"webLink,omitempty"`
	ExtendedProperties    []ExtendedProperty `json:"singleValueExtendedProperties,omitempty"`

	// Raw is the JSON document the event was decoded from, if any.
	Raw json.RawMessage `json:"-"`
}

type eventAlias Event

// UnmarshalJSON decodes the typed fields and keeps a copy of the document.
func (e *Event) UnmarshalJSON(data []byte) error {
	var a eventAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = Event(a)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the provider document when there is one, so fields
// this package does not model survive a round trip.
func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	return json.Marshal(eventAlias(e))
}

// EventList is a page of a Graph events collection.
type EventList struct {
	// Count is @odata.count, present only when $count=true was requested.
	Count    *int    `json:"@odata.count,omitempty"`
	Value    []Event `json:"value"`
	NextLink string  `json:"@odata.nextLink,omitempty"`
}
