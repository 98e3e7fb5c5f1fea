package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Attribute keys shared by every package that logs Graph traffic.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyUserHash  = "user_hash"
	KeyTenant    = "tenant"
	KeyEventID   = "event_id"
	KeyZoomID    = "zoom_id"
	KeyRequestID = "client_request_id"
	KeyServerID  = "request_id"
	KeyMethod    = "method"
	KeyStatus    = "status"
	KeyHTTPCode  = "http_status"
	KeyDuration  = "duration"
	KeyError     = "error"
	KeyTool      = "tool"
)

// Status values used in log lines.
// Duplicated from the instrumentation package, which imports this one.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithService returns a logger with the service attribute set.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Tenant returns a slog attribute for the directory tenant (account id).
func Tenant(tenant string) slog.Attr {
	return slog.String(KeyTenant, tenant)
}

// EventID returns a slog attribute for a provider event id.
func EventID(id string) slog.Attr {
	return slog.String(KeyEventID, id)
}

// ZoomID returns a slog attribute for a Zoom meeting id.
func ZoomID(id string) slog.Attr {
	return slog.String(KeyZoomID, id)
}

// RequestID returns a slog attribute for the client-request-id sent to Graph.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// ServerRequestID returns a slog attribute for the request-id Graph answered with.
func ServerRequestID(id string) slog.Attr {
	return slog.String(KeyServerID, id)
}

// Method returns a slog attribute for an HTTP method.
func Method(method string) slog.Attr {
	return slog.String(KeyMethod, method)
}

// HTTPStatus returns a slog attribute for an HTTP status code.
func HTTPStatus(code int) slog.Attr {
	return slog.Int(KeyHTTPCode, code)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that slog omits from output,
// so Err(maybeNilErr) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeUser returns a hashed representation of a user id or UPN.
// Graph user ids are usually email-shaped, so they are never logged raw.
func AnonymizeUser(user string) string {
	if user == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(user)))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user id.
//
// Usage:
//
//	logger.Info("event created", logging.UserHash(userID))
func UserHash(user string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeUser(user))
}

// SanitizeToken returns a length indicator for a token without exposing any content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// ExtractDomain extracts the domain part from a UPN such as "room@example.org".
// Object-id style user ids have no domain and yield "".
func ExtractDomain(user string) string {
	if user == "" {
		return ""
	}
	parts := strings.Split(user, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}

// Domain returns a slog attribute for the user domain (lower cardinality than the full id).
func Domain(user string) slog.Attr {
	return slog.String("user_domain", ExtractDomain(user))
}
