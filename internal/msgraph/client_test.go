package msgraph

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/msmeetings/internal/logging"
	"github.com/teemow/msmeetings/pkg/graphtest"
)

const testUser = "room-12@example.org"

func newTestClient(t *testing.T, srv *graphtest.Server, opts ...Option) *Client {
	t.Helper()
	cfg := Config{
		Endpoint:      srv.Endpoint(),
		AuthorityHost: srv.AuthorityHost(),
		AccountID:     "tenant-id",
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
	}
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	client, err := NewClient(cfg, opts...)
	require.NoError(t, err)
	return client
}

func eventsPath(user string) string {
	return "/users/" + url.PathEscape(user) + "/calendar/events"
}

func TestClient_ClientCredentialsTokenIsReused(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.ClientSecret = "client-secret"

	client := newTestClient(t, srv)
	ctx := context.Background()

	_, err := client.Get(ctx, eventsPath(testUser), nil, nil)
	require.NoError(t, err)
	_, err = client.Get(ctx, eventsPath(testUser), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, srv.TokenRequests())
	calls := srv.Calls()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, "Bearer graphtest-token-1", c.Header.Get("Authorization"))
		assert.Equal(t, "application/json", c.Header.Get("Accept"))
	}
}

func TestClient_TokenFailureStopsRequest(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.ClientSecret = "the-real-secret"

	client := newTestClient(t, srv)

	_, err := client.Get(context.Background(), eventsPath(testUser), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire graph token")
	assert.Empty(t, srv.Calls(), "no Graph request should be sent without a token")
}

func TestClient_ExtraHeaders(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv,
		WithTokenProvider(StaticTokenProvider{AccessToken: "static"}),
		WithDefaultHeaders(http.Header{"Prefer": {`outlook.timezone="UTC"`}}),
	)

	extra := http.Header{}
	extra.Set("test", "test")
	extra.Set("Authorization", "Bearer hijacked")
	extra.Set("Prefer", `outlook.timezone="Europe/Zurich"`)

	_, err := client.Get(context.Background(), eventsPath(testUser), nil, extra)
	require.NoError(t, err)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	h := calls[0].Header
	assert.Equal(t, "test", h.Get("test"))
	assert.Equal(t, "Bearer static", h.Get("Authorization"))
	assert.Equal(t, `outlook.timezone="Europe/Zurich"`, h.Get("Prefer"))
}

func TestClient_ClientRequestID(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv, WithTokenProvider(StaticTokenProvider{AccessToken: "static"}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Get(ctx, eventsPath(testUser), nil, nil)
		require.NoError(t, err)
	}
	_, err := client.Get(ctx, eventsPath(testUser), nil, http.Header{"Client-Request-Id": {"caller-chosen"}})
	require.NoError(t, err)

	seen := map[string]bool{}
	calls := srv.Calls()
	for _, c := range calls[:3] {
		id := c.Header.Get(HeaderClientRequestID)
		assert.Len(t, id, 36)
		assert.False(t, seen[id], "client-request-id %s reused", id)
		seen[id] = true
	}
	assert.Equal(t, "caller-chosen", calls[3].Header.Get(HeaderClientRequestID))
}

func TestClient_ServerRequestID(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := newTestClient(t, srv,
		WithTokenProvider(StaticTokenProvider{AccessToken: "static"}),
		WithLogger(logging.NewSlogAdapter(logger)),
	)
	ctx := context.Background()

	first, err := client.Get(ctx, eventsPath(testUser), nil, nil)
	require.NoError(t, err)
	second, err := client.Get(ctx, eventsPath(testUser), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "graphtest-request-1", first.RequestID())
	assert.Equal(t, "graphtest-request-2", second.RequestID())
	assert.Contains(t, logs.String(), `"request_id":"graphtest-request-2"`)
}

func TestClient_PostAndQuery(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv, WithTokenProvider(StaticTokenProvider{AccessToken: "static"}))
	ctx := context.Background()

	resp, err := client.Post(ctx, eventsPath(testUser), map[string]any{"subject": "[1] Kickoff"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID      string `json:"id"`
		Subject string `json:"subject"`
	}
	require.NoError(t, resp.JSON(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "[1] Kickoff", created.Subject)

	query := url.Values{}
	query.Set("$count", "true")
	query.Set("$filter", "subject eq '[1] Kickoff'")
	resp, err = client.Get(ctx, eventsPath(testUser), query, nil)
	require.NoError(t, err)

	var list struct {
		Count int `json:"@odata.count"`
	}
	require.NoError(t, resp.JSON(&list))
	assert.Equal(t, 1, list.Count)

	calls := srv.Calls()
	assert.Equal(t, "application/json", calls[0].Header.Get("Content-Type"))
	assert.Equal(t, "subject eq '[1] Kickoff'", calls[1].Query.Get("$filter"))
}

func TestClient_PatchAndDelete(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	id := srv.Seed(testUser, map[string]any{"subject": "old"})

	client := newTestClient(t, srv, WithTokenProvider(StaticTokenProvider{AccessToken: "static"}))
	ctx := context.Background()
	itemPath := eventsPath(testUser) + "/" + url.PathEscape(id)

	resp, err := client.Patch(ctx, itemPath, map[string]any{"subject": "new"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stored, ok := srv.Event(testUser, id)
	require.True(t, ok)
	assert.Equal(t, "new", stored["subject"])

	resp, err = client.Delete(ctx, itemPath, nil)
	require.NoError(t, err)
	assert.True(t, resp.NoContent())
	assert.Equal(t, 0, srv.Events(testUser))
}

func TestClient_APIError(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv, WithTokenProvider(StaticTokenProvider{AccessToken: "static"}))

	_, err := client.Get(context.Background(), eventsPath(testUser)+"/missing", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "ErrorItemNotFound", apiErr.Code)
	assert.Equal(t, http.MethodGet, apiErr.Method)
	assert.Equal(t, "graphtest-request-1", apiErr.RequestID)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "returned 404: ErrorItemNotFound")
}

func TestClient_CannedNonJSONError(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Respond(http.MethodDelete, eventsPath(testUser)+"/x", http.StatusServiceUnavailable, nil)

	client := newTestClient(t, srv, WithTokenProvider(StaticTokenProvider{AccessToken: "static"}))

	_, err := client.Delete(context.Background(), eventsPath(testUser)+"/x", nil)
	assert.True(t, HasStatus(err, http.StatusServiceUnavailable))
	assert.False(t, IsNotFound(err))
}

func TestClient_CanceledContext(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, eventsPath(testUser), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(Config{AccountID: "tenant"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	// An explicit token provider makes credentials optional.
	_, err = NewClient(Config{}, WithTokenProvider(StaticTokenProvider{AccessToken: "x"}))
	assert.NoError(t, err)
}

func TestOperationFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "patch", OperationFromContext(ctx, http.MethodPatch))
	assert.Equal(t, "list_events", OperationFromContext(WithOperation(ctx, "list_events"), http.MethodGet))
}

func TestResponse_JSONEmptyBody(t *testing.T) {
	r := &Response{StatusCode: http.StatusNoContent}
	var v map[string]any
	assert.Error(t, r.JSON(&v))
	assert.True(t, r.NoContent())
}

func TestStaticTokenProvider_Empty(t *testing.T) {
	_, err := StaticTokenProvider{}.Token(context.Background())
	assert.Error(t, err)
}
