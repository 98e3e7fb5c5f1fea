package common

import (
	"fmt"
	"net/http"
	"strings"
)

// Argument names shared by the events tools.
const (
	ArgUserID  = "user_id"
	ArgEventID = "event_id"
	ArgZoomID  = "zoom_id"
	ArgHeaders = "headers"
)

// GetUserFromArgs returns the calendar owner the tool call targets.
func GetUserFromArgs(args map[string]interface{}) string {
	return GetStringArg(args, ArgUserID)
}

// GetStringArg returns a string argument, or "" when missing or not a string.
func GetStringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// RequireStringArg returns a non-empty string argument or an error naming it.
func RequireStringArg(args map[string]interface{}, key string) (string, error) {
	v := strings.TrimSpace(GetStringArg(args, key))
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// OptionalStringArg returns a pointer to the argument when the key is
// present, even if its value is "". A missing key yields nil.
func OptionalStringArg(args map[string]interface{}, key string) (*string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string", key)
	}
	return &s, nil
}

// GetHeadersArg converts the "headers" object argument to request headers.
// Values may be strings or arrays of strings.
func GetHeadersArg(args map[string]interface{}) (http.Header, error) {
	raw, ok := args[ArgHeaders]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an object", ArgHeaders)
	}

	headers := make(http.Header, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			headers.Add(k, val)
		case []interface{}:
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("header %s must contain strings", k)
				}
				headers.Add(k, s)
			}
		default:
			return nil, fmt.Errorf("header %s must be a string or an array of strings", k)
		}
	}
	return headers, nil
}
