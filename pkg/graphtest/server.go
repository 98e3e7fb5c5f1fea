package graphtest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// APIVersionPath is the path prefix Endpoint appends to the server URL.
const APIVersionPath = "/v1.0"

const extendedPropertiesKey = "singleValueExtendedProperties"

// Call is one request received by the server.
type Call struct {
	Method string
	// Path is relative to Endpoint, e.g. /users/u/calendar/events.
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type cannedResponse struct {
	status int
	body   any
}

// Server is a fake Graph API server.
type Server struct {
	*httptest.Server

	// ClientSecret, when set, must match the secret sent to the token endpoint.
	ClientSecret string

	mu            sync.Mutex
	events        map[string][]map[string]any // user -> events in creation order
	nextID        int
	calls         []Call
	canned        map[string]cannedResponse
	tokenRequests int
}

// NewServer starts a fake Graph server. Close it when done.
func NewServer() *Server {
	s := &Server{
		events: make(map[string][]map[string]any),
		nextID: 1,
		canned: make(map[string]cannedResponse),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handleRequest))
	return s
}

// Endpoint is the Graph base URL to configure clients with.
func (s *Server) Endpoint() string {
	return s.URL + APIVersionPath
}

// AuthorityHost is the identity platform host to configure clients with.
func (s *Server) AuthorityHost() string {
	return s.URL
}

// Respond makes method+path (relative to Endpoint, without query) return
// the given status and JSON body instead of the built-in behavior.
// A nil body sends no content.
func (s *Server) Respond(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[method+" "+path] = cannedResponse{status: status, body: body}
}

// Seed stores an event for user and returns its id. An "id" key in event is kept.
func (s *Server) Seed(user string, event map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeLocked(user, cloneMap(event))
}

// Event returns the stored event, including extended properties.
func (s *Server) Event(user, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ev := s.findLocked(user, id)
	if ev == nil {
		return nil, false
	}
	return cloneMap(ev), true
}

// Events returns the number of events stored for user.
func (s *Server) Events(user string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events[user])
}

// Calls returns every Graph request received so far, in order.
// Token requests are not included.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// TokenRequests returns how many token requests were served.
func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenRequests
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/oauth2/v2.0/token") {
		s.handleToken(w, r)
		return
	}

	escaped := r.URL.EscapedPath()
	if !strings.HasPrefix(escaped, APIVersionPath+"/") {
		writeError(w, http.StatusNotFound, "UnknownVersion", "unsupported API version")
		return
	}
	escaped = strings.TrimPrefix(escaped, APIVersionPath)

	body, _ := io.ReadAll(r.Body)
	path, err := url.PathUnescape(escaped)
	if err != nil {
		path = escaped
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	w.Header().Set("request-id", fmt.Sprintf("graphtest-request-%d", len(s.calls)))
	canned, hasCanned := s.canned[r.Method+" "+path]
	s.mu.Unlock()

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusUnauthorized, "InvalidAuthenticationToken", "Access token is empty.")
		return
	}

	if hasCanned {
		writeJSON(w, canned.status, canned.body)
		return
	}

	s.route(w, r, escaped, body)
}

// route handles /users/{user}/calendar/events[/{id}].
func (s *Server) route(w http.ResponseWriter, r *http.Request, escapedPath string, body []byte) {
	parts := strings.Split(strings.Trim(escapedPath, "/"), "/")
	for i, p := range parts {
		if unescaped, err := url.PathUnescape(p); err == nil {
			parts[i] = unescaped
		}
	}

	if len(parts) < 4 || parts[0] != "users" || parts[2] != "calendar" || parts[3] != "events" {
		writeError(w, http.StatusBadRequest, "BadRequest", "Resource not found for the segment.")
		return
	}
	user := parts[1]

	switch len(parts) {
	case 4:
		switch r.Method {
		case http.MethodGet:
			s.listEvents(w, r, user)
		case http.MethodPost:
			s.createEvent(w, user, body)
		default:
			writeError(w, http.StatusMethodNotAllowed, "BadRequest", "method not allowed")
		}
	case 5:
		id := parts[4]
		switch r.Method {
		case http.MethodGet:
			s.getEvent(w, r, user, id)
		case http.MethodPatch:
			s.patchEvent(w, user, id, body)
		case http.MethodDelete:
			s.deleteEvent(w, user, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "BadRequest", "method not allowed")
		}
	default:
		writeError(w, http.StatusBadRequest, "BadRequest", "Resource not found for the segment.")
	}
}

var (
	extendedFilterRe = regexp.MustCompile(`^singleValueExtendedProperties/Any\(ep:\s*ep/id eq '((?:[^']|'')*)' and ep/value eq '((?:[^']|'')*)'\)$`)
	subjectFilterRe  = regexp.MustCompile(`^subject eq '((?:[^']|'')*)'$`)
	expandFilterRe   = regexp.MustCompile(`^singleValueExtendedProperties\(\$filter=id eq '((?:[^']|'')*)'\)$`)
)

func unquote(s string) string {
	return strings.ReplaceAll(s, "''", "'")
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, user string) {
	query := r.URL.Query()

	match := func(map[string]any) bool { return true }
	if filter := query.Get("$filter"); filter != "" {
		switch {
		case extendedFilterRe.MatchString(filter):
			m := extendedFilterRe.FindStringSubmatch(filter)
			propID, value := unquote(m[1]), unquote(m[2])
			match = func(ev map[string]any) bool {
				v, ok := extendedPropertyValue(ev, propID)
				return ok && v == value
			}
		case subjectFilterRe.MatchString(filter):
			subject := unquote(subjectFilterRe.FindStringSubmatch(filter)[1])
			match = func(ev map[string]any) bool {
				return ev["subject"] == subject
			}
		default:
			writeError(w, http.StatusBadRequest, "BadRequest", "Invalid filter clause")
			return
		}
	}

	s.mu.Lock()
	var matched []map[string]any
	for _, ev := range s.events[user] {
		if match(ev) {
			matched = append(matched, s.view(ev, query.Get("$expand")))
		}
	}
	s.mu.Unlock()

	total := len(matched)
	if top, err := strconv.Atoi(query.Get("$top")); err == nil && top >= 0 && top < len(matched) {
		matched = matched[:top]
	}

	resp := map[string]any{
		"@odata.context": "https://graph.microsoft.com/v1.0/$metadata#users('" + user + "')/calendar/events",
		"value":          nonNil(matched),
	}
	if query.Get("$count") == "true" {
		resp["@odata.count"] = total
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request, user, id string) {
	s.mu.Lock()
	_, ev := s.findLocked(user, id)
	var out map[string]any
	if ev != nil {
		out = s.view(ev, r.URL.Query().Get("$expand"))
	}
	s.mu.Unlock()

	if out == nil {
		writeItemNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createEvent(w http.ResponseWriter, user string, body []byte) {
	var ev map[string]any
	if err := json.Unmarshal(body, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "RequestBodyRead", fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	delete(ev, "id")

	s.mu.Lock()
	id := s.storeLocked(user, ev)
	_, stored := s.findLocked(user, id)
	out := s.view(stored, "")
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) patchEvent(w http.ResponseWriter, user, id string, body []byte) {
	var patch map[string]any
	if err := json.Unmarshal(body, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "RequestBodyRead", fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	s.mu.Lock()
	_, ev := s.findLocked(user, id)
	if ev == nil {
		s.mu.Unlock()
		writeItemNotFound(w)
		return
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		if k == extendedPropertiesKey {
			ev[k] = mergeExtendedProperties(ev[k], v)
			continue
		}
		ev[k] = v
	}
	out := s.view(ev, "")
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteEvent(w http.ResponseWriter, user, id string) {
	s.mu.Lock()
	idx, _ := s.findLocked(user, id)
	if idx < 0 {
		s.mu.Unlock()
		writeItemNotFound(w)
		return
	}
	evs := s.events[user]
	s.events[user] = append(evs[:idx:idx], evs[idx+1:]...)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}
	if s.ClientSecret != "" && r.PostForm.Get("client_secret") != s.ClientSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_client",
			"error_description": "AADSTS7000215: Invalid client secret provided.",
		})
		return
	}

	s.mu.Lock()
	s.tokenRequests++
	n := s.tokenRequests
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"token_type":   "Bearer",
		"expires_in":   3599,
		"access_token": fmt.Sprintf("graphtest-token-%d", n),
	})
}

func (s *Server) storeLocked(user string, ev map[string]any) string {
	id, _ := ev["id"].(string)
	if id == "" {
		id = fmt.Sprintf("AAMkAGraphtest%04d=", s.nextID)
		s.nextID++
		ev["id"] = id
	}
	if _, ok := ev["webLink"]; !ok {
		ev["webLink"] = "https://outlook.office365.com/owa/?itemid=" + url.QueryEscape(id)
	}
	s.events[user] = append(s.events[user], ev)
	return id
}

func (s *Server) findLocked(user, id string) (int, map[string]any) {
	for i, ev := range s.events[user] {
		if ev["id"] == id {
			return i, ev
		}
	}
	return -1, nil
}

// view returns a copy of ev as Graph would serialize it. Extended
// properties are only included when requested via $expand, and then only
// the entries matching the expand filter.
func (s *Server) view(ev map[string]any, expand string) map[string]any {
	out := cloneMap(ev)
	delete(out, extendedPropertiesKey)

	m := expandFilterRe.FindStringSubmatch(expand)
	if m == nil {
		return out
	}
	propID := unquote(m[1])
	props, _ := ev[extendedPropertiesKey].([]any)
	var kept []any
	for _, p := range props {
		if pm, ok := p.(map[string]any); ok && strings.EqualFold(fmt.Sprint(pm["id"]), propID) {
			kept = append(kept, pm)
		}
	}
	if kept != nil {
		out[extendedPropertiesKey] = kept
	}
	return out
}

func extendedPropertyValue(ev map[string]any, propID string) (string, bool) {
	props, _ := ev[extendedPropertiesKey].([]any)
	for _, p := range props {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if strings.EqualFold(fmt.Sprint(pm["id"]), propID) {
			v, ok := pm["value"].(string)
			return v, ok
		}
	}
	return "", false
}

func mergeExtendedProperties(existing, patch any) any {
	current, _ := existing.([]any)
	updates, _ := patch.([]any)
	merged := append([]any(nil), current...)
	for _, u := range updates {
		um, ok := u.(map[string]any)
		if !ok {
			continue
		}
		replaced := false
		for i, c := range merged {
			if cm, ok := c.(map[string]any); ok && strings.EqualFold(fmt.Sprint(cm["id"]), fmt.Sprint(um["id"])) {
				merged[i] = um
				replaced = true
			}
		}
		if !replaced {
			merged = append(merged, um)
		}
	}
	return merged
}

func cloneMap(m map[string]any) map[string]any {
	// Round-trip through JSON so nested maps and slices are not shared.
	data, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("graphtest: cannot clone event: %v", err))
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("graphtest: cannot clone event: %v", err))
	}
	return out
}

func nonNil(v []map[string]any) []map[string]any {
	if v == nil {
		return []map[string]any{}
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	if body == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeItemNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "ErrorItemNotFound", "The specified object was not found in the store.")
}
