package events

import "strings"

// ZoomIDPropertyName is the name part of the Zoom id extended property.
const ZoomIDPropertyName = "ZoomId"

// ZoomIDPropertyID is the full id of the string extended property holding
// the Zoom meeting id.
const ZoomIDPropertyID = "String {66f5a359-4659-4830-9070-00040ec6ac6e} Name " + ZoomIDPropertyName

// ExtendedPropertyValue returns the value of the first single-value
// extended property on e whose id names the given property, for example
// "ZoomId" for "String {guid} Name ZoomId". Graph may change the casing
// of ids, so the comparison ignores case.
func ExtendedPropertyValue(e *Event, name string) (string, bool) {
	if e == nil {
		return "", false
	}
	suffix := strings.ToLower(" Name " + name)
	for _, p := range e.ExtendedProperties {
		if strings.HasSuffix(strings.ToLower(p.ID), suffix) {
			return p.Value, true
		}
	}
	return "", false
}

// ZoomID returns the Zoom meeting id stored on the event.
// Events fetched without expanding singleValueExtendedProperties never have one.
func (e *Event) ZoomID() (string, bool) {
	return ExtendedPropertyValue(e, ZoomIDPropertyName)
}
