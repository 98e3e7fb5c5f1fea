package events

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/msmeetings/internal/logging"
	"github.com/teemow/msmeetings/internal/msgraph"
	"github.com/teemow/msmeetings/pkg/graphtest"
)

const testUser = "room-12@example.org"

func newTestComponent(t *testing.T, opts ...Option) (*Component, *graphtest.Server) {
	t.Helper()
	srv := graphtest.NewServer()
	t.Cleanup(srv.Close)

	client, err := msgraph.NewClient(msgraph.Config{
		Endpoint:      srv.Endpoint(),
		AuthorityHost: srv.AuthorityHost(),
		AccountID:     "tenant-id",
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
	}, msgraph.WithLogger(logging.Discard()))
	require.NoError(t, err)

	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return NewComponent(client, opts...), srv
}

func decodeBody(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestComponent_CreateEvent(t *testing.T) {
	c, srv := newTestComponent(t)

	ev, err := c.CreateEvent(context.Background(), testUser, testParams(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "[123] Seminar", ev.Subject)
	assert.Equal(t, "https://zoom.us/j/1", ev.OnlineMeetingURL)
	assert.NotEmpty(t, ev.WebLink)
	assert.Equal(t, 1, srv.Events(testUser))

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/users/"+testUser+"/calendar/events", calls[0].Path)

	sent := decodeBody(t, calls[0].Body)
	assert.Equal(t, "[123] Seminar", sent["subject"])
	assert.Equal(t, map[string]any{"dateTime": "2021-01-01T10:00:00", "timeZone": "Europe/Zurich"}, sent["start"])
	assert.Equal(t, map[string]any{"contentType": "text", "content": "Zoom URL: https://zoom.us/j/1"}, sent["body"])
	assert.Equal(t, true, sent["isOnlineMeeting"])
	assert.Equal(t, []any{}, sent["attendees"])
}

func TestComponent_CreateEvent_InvalidDateTimeSendsNothing(t *testing.T) {
	c, srv := newTestComponent(t)

	p := testParams()
	p.StartTime = "soon"
	_, err := c.CreateEvent(context.Background(), testUser, p, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDateTime)
	assert.Empty(t, srv.Calls())
}

func TestComponent_ListEvents(t *testing.T) {
	c, srv := newTestComponent(t)
	srv.Seed(testUser, map[string]any{"subject": "a"})
	srv.Seed(testUser, map[string]any{"subject": "b"})
	srv.Seed("other@example.org", map[string]any{"subject": "c"})

	list, err := c.ListEvents(context.Background(), testUser, nil, http.Header{"Prefer": {`outlook.timezone="UTC"`}})
	require.NoError(t, err)

	require.Len(t, list.Value, 2)
	assert.Equal(t, "a", list.Value[0].Subject)
	assert.Equal(t, "b", list.Value[1].Subject)
	assert.Nil(t, list.Count)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, `outlook.timezone="UTC"`, calls[0].Header.Get("Prefer"))
}

func TestComponent_ListEvents_Query(t *testing.T) {
	c, srv := newTestComponent(t)
	for i := 0; i < 3; i++ {
		srv.Seed(testUser, map[string]any{"subject": "s"})
	}

	list, err := c.ListEvents(context.Background(), testUser, url.Values{"$count": {"true"}, "$top": {"1"}}, nil)
	require.NoError(t, err)

	require.NotNil(t, list.Count)
	assert.Equal(t, 3, *list.Count)
	assert.Len(t, list.Value, 1)
}

func TestComponent_GetEvent(t *testing.T) {
	c, srv := newTestComponent(t)
	id := srv.Seed(testUser, map[string]any{"subject": "[1] Talk", "iCalUId": "ical-1"})

	ev, err := c.GetEvent(context.Background(), testUser, id, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, id, ev.ID)
	assert.Equal(t, "[1] Talk", ev.Subject)
	assert.Contains(t, string(ev.Raw), "ical-1")
}

func TestComponent_GetEvent_NotFound(t *testing.T) {
	c, _ := newTestComponent(t)

	_, err := c.GetEvent(context.Background(), testUser, "missing", nil, nil)

	require.Error(t, err)
	assert.True(t, msgraph.IsNotFound(err))
	var apiErr *msgraph.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ErrorItemNotFound", apiErr.Code)
}

func TestComponent_UpdateEvent(t *testing.T) {
	c, srv := newTestComponent(t)
	id := srv.Seed(testUser, map[string]any{"subject": "[1] Old", "onlineMeetingUrl": "https://zoom.us/j/1"})

	ev, err := c.UpdateEvent(context.Background(), testUser, id, PartialEventParameters{
		IndicoEventID: "1",
		Subject:       Ptr("New"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "[1] New", ev.Subject)
	assert.Equal(t, "https://zoom.us/j/1", ev.OnlineMeetingURL)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPatch, calls[0].Method)
	assert.Equal(t, "/users/"+testUser+"/calendar/events/"+id, calls[0].Path)
	assert.Equal(t, map[string]any{"subject": "[1] New"}, decodeBody(t, calls[0].Body))
}

func TestComponent_DeleteEvent(t *testing.T) {
	c, srv := newTestComponent(t)
	id := srv.Seed(testUser, map[string]any{"subject": "x"})

	require.NoError(t, c.DeleteEvent(context.Background(), testUser, id, nil))
	assert.Equal(t, 0, srv.Events(testUser))

	err := c.DeleteEvent(context.Background(), testUser, id, nil)
	require.Error(t, err)
	assert.True(t, msgraph.IsNotFound(err))
}

func TestComponent_EscapesPathSegments(t *testing.T) {
	c, srv := newTestComponent(t)
	user := "a/b@example.org"
	id := srv.Seed(user, map[string]any{"id": "AA/MK+=", "subject": "x"})

	ev, err := c.GetEvent(context.Background(), user, id, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "AA/MK+=", ev.ID)
}
