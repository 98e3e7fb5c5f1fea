package msgraph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/msmeetings/internal/instrumentation"
	"github.com/teemow/msmeetings/internal/logging"
)

// Requester is the transport the events package is written against.
// Each call is one HTTP round trip; headers are merged over the
// client's defaults but can never replace Authorization.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, headers http.Header) (*Response, error)
	Post(ctx context.Context, path string, body any, headers http.Header) (*Response, error)
	Patch(ctx context.Context, path string, body any, headers http.Header) (*Response, error)
	Delete(ctx context.Context, path string, headers http.Header) (*Response, error)
}

// Header names set by the client.
const (
	HeaderAuthorization   = "Authorization"
	HeaderClientRequestID = "client-request-id"

	// HeaderRequestID is the server-side correlation id Graph returns.
	HeaderRequestID = "request-id"
)

// Client is the default Requester. It is safe for concurrent use.
type Client struct {
	endpoint       string
	httpClient     *http.Client
	tokens         TokenProvider
	metrics        *instrumentation.Metrics
	logger         logging.Logger
	defaultHeaders http.Header
	newRequestID   func() string
}

var _ Requester = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for Graph and token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenProvider replaces the client-credentials provider built from Config.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

// WithMetrics records Graph request metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDefaultHeaders adds headers sent on every request, such as
// Prefer: outlook.timezone="UTC".
func WithDefaultHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, v := range h {
			c.defaultHeaders[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
}

// NewClient creates a Graph client. Unless WithTokenProvider is given, cfg
// must carry app credentials for the client-credentials flow.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()

	c := &Client{
		endpoint:       cfg.Endpoint,
		defaultHeaders: http.Header{},
		newRequestID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = cfg.HTTPClient()
	}
	if c.logger == nil {
		c.logger = logging.DefaultLogger()
	}
	if c.tokens == nil {
		tp, err := NewClientCredentialsProvider(cfg, c.httpClient, c.metrics, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create token provider: %w", err)
		}
		c.tokens = tp
	}

	return c, nil
}

// Endpoint returns the Graph base URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Get issues a GET request with optional OData query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, headers)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, headers)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body, headers)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, headers http.Header) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil, headers)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, extra http.Header) (*Response, error) {
	operation := OperationFromContext(ctx, method)

	reqURL := c.endpoint + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s body: %w", operation, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderClientRequestID, c.newRequestID())
	mergeHeaders(req.Header, c.defaultHeaders)
	mergeHeaders(req.Header, extra)

	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderAuthorization, tok.Type()+" "+tok.AccessToken)

	requestID := req.Header.Get(HeaderClientRequestID)
	ctx, span := instrumentation.StartGraphSpan(ctx, method, operation,
		attribute.String(instrumentation.SpanAttrRequestID, requestID))
	defer span.End()
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordGraphRequest(ctx, method, operation, 0, time.Since(start))
		instrumentation.SetSpanError(span, err)
		c.logger.Warn("graph request failed",
			logging.Method(method),
			logging.Operation(operation),
			logging.RequestID(requestID),
			logging.Err(err))
		return nil, fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	c.metrics.RecordGraphRequest(ctx, method, operation, resp.StatusCode, duration)
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrStatusCode, resp.StatusCode))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}
	c.logger.Debug("graph request",
		logging.Method(method),
		logging.Operation(operation),
		logging.HTTPStatus(out.StatusCode),
		logging.RequestID(requestID),
		logging.ServerRequestID(out.RequestID()),
		logging.KeyDuration, duration)

	if out.StatusCode < 200 || out.StatusCode > 299 {
		apiErr := newAPIError(method, path, out)
		instrumentation.SetSpanError(span, apiErr)
		return nil, apiErr
	}

	instrumentation.SetSpanSuccess(span)
	return out, nil
}

// mergeHeaders copies src into dst, replacing existing values per key.
// Authorization is never copied.
func mergeHeaders(dst, src http.Header) {
	for k, v := range src {
		key := http.CanonicalHeaderKey(k)
		if key == HeaderAuthorization {
			continue
		}
		dst[key] = append([]string(nil), v...)
	}
}

type operationKey struct{}

// WithOperation labels requests made with ctx for metrics and tracing.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey{}, operation)
}

// OperationFromContext returns the operation label set by WithOperation,
// falling back to the lowercased HTTP method.
func OperationFromContext(ctx context.Context, method string) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return strings.ToLower(method)
}
