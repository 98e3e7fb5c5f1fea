package graphtest

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser   = "room-12@example.org"
	testPropID = "String {66f5a359-4659-4830-9070-00040ec6ac6e} Name ZoomId"
)

func do(t *testing.T, srv *Server, method, path string, query url.Values, body string) (int, map[string]any) {
	t.Helper()
	u := srv.Endpoint() + path
	if query != nil {
		u += "?" + query.Encode()
	}
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, u, r)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer test")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func eventsPath() string {
	return "/users/" + testUser + "/calendar/events"
}

func TestServer_RequiresBearer(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	resp, err := http.Get(srv.Endpoint() + eventsPath())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_Token(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	srv.ClientSecret = "s3cret"

	tokenURL := srv.AuthorityHost() + "/tenant/oauth2/v2.0/token"

	resp, err := http.PostForm(tokenURL, url.Values{"grant_type": {"client_credentials"}, "client_secret": {"wrong"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.PostForm(tokenURL, url.Values{"grant_type": {"client_credentials"}, "client_secret": {"s3cret"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tok map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	assert.Equal(t, "graphtest-token-1", tok["access_token"])
	assert.Equal(t, 1, srv.TokenRequests())
}

func TestServer_CRUD(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	status, created := do(t, srv, http.MethodPost, eventsPath(), nil, `{"subject":"a"}`)
	require.Equal(t, http.StatusCreated, status)
	id := created["id"].(string)
	assert.NotEmpty(t, created["webLink"])

	status, _ = do(t, srv, http.MethodPatch, eventsPath()+"/"+url.PathEscape(id), nil, `{"subject":"b"}`)
	assert.Equal(t, http.StatusOK, status)

	status, got := do(t, srv, http.MethodGet, eventsPath()+"/"+url.PathEscape(id), nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "b", got["subject"])

	status, _ = do(t, srv, http.MethodDelete, eventsPath()+"/"+url.PathEscape(id), nil, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, errBody := do(t, srv, http.MethodGet, eventsPath()+"/"+url.PathEscape(id), nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ErrorItemNotFound", errBody["error"].(map[string]any)["code"])

	assert.Len(t, srv.Calls(), 5)
}

func TestServer_ExtendedPropertyFilterAndExpand(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	prop := func(v string) []map[string]any {
		return []map[string]any{{"id": testPropID, "value": v}}
	}
	srv.Seed(testUser, map[string]any{"subject": "a", "singleValueExtendedProperties": prop("1")})
	srv.Seed(testUser, map[string]any{"subject": "b", "singleValueExtendedProperties": prop("2")})

	query := url.Values{
		"$count":  {"true"},
		"$filter": {"singleValueExtendedProperties/Any(ep: ep/id eq '" + testPropID + "' and ep/value eq '2')"},
	}
	_, list := do(t, srv, http.MethodGet, eventsPath(), query, "")
	assert.EqualValues(t, 1, list["@odata.count"])
	value := list["value"].([]any)
	require.Len(t, value, 1)
	ev := value[0].(map[string]any)
	assert.Equal(t, "b", ev["subject"])
	assert.NotContains(t, ev, "singleValueExtendedProperties")

	query.Set("$expand", "singleValueExtendedProperties($filter=id eq '"+testPropID+"')")
	_, list = do(t, srv, http.MethodGet, eventsPath(), query, "")
	ev = list["value"].([]any)[0].(map[string]any)
	assert.Contains(t, ev, "singleValueExtendedProperties")
}

func TestServer_UnsupportedFilter(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	status, _ := do(t, srv, http.MethodGet, eventsPath(), url.Values{"$filter": {"start/dateTime ge '2021'"}}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Respond(t *testing.T) {
	srv := NewServer()
	defer srv.Close()
	srv.Respond(http.MethodGet, eventsPath(), http.StatusOK, map[string]any{"@odata.count": 0})

	status, body := do(t, srv, http.MethodGet, eventsPath(), nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["@odata.count"])
	assert.NotContains(t, body, "value")
}
