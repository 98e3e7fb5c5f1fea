package msgraph

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Response is a completed 2xx Graph response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("failed to decode response: empty body (status %d)", r.StatusCode)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// NoContent reports whether the response carried no body (e.g. 204 on delete).
func (r *Response) NoContent() bool {
	return r.StatusCode == http.StatusNoContent || len(r.Body) == 0
}

// RequestID returns the server-side request-id header, if any.
func (r *Response) RequestID() string {
	return r.Header.Get(HeaderRequestID)
}

// APIError is returned for any non-2xx Graph response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int

	// Code and Message come from the Graph error envelope, when present.
	Code    string
	Message string

	// RequestID is the server-side request-id header.
	RequestID string

	// Body is the raw response body.
	Body []byte
}

// graphErrorEnvelope is Graph's standard error shape:
// {"error": {"code": "...", "message": "..."}}
type graphErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIError(method, path string, resp *Response) *APIError {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		RequestID:  resp.RequestID(),
		Body:       resp.Body,
	}
	var env graphErrorEnvelope
	if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &env) == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("graph %s %s returned %d", e.Method, e.Path, e.StatusCode)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsNotFound reports whether err is a Graph 404.
func IsNotFound(err error) bool {
	return HasStatus(err, http.StatusNotFound)
}

// HasStatus reports whether err is an *APIError with the given status code.
func HasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
