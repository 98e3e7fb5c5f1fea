package msgraph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/msmeetings/internal/logging"
)

// newStalledAuthority returns an authority host whose token endpoint never
// answers until the request is abandoned or the test ends.
func newStalledAuthority(t *testing.T) string {
	t.Helper()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	return srv.URL
}

func stalledConfig(t *testing.T) Config {
	return Config{
		AuthorityHost: newStalledAuthority(t),
		AccountID:     "tenant-id",
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
	}
}

func TestClientCredentialsProvider_StalledTokenEndpointHonorsContext(t *testing.T) {
	tokens, err := NewClientCredentialsProvider(stalledConfig(t), nil, nil, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = tokens.Token(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "failed to acquire graph token")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClientCredentialsProvider_StalledTokenEndpointTimesOut(t *testing.T) {
	cfg := stalledConfig(t)
	cfg.Timeout = 200 * time.Millisecond
	tokens, err := NewClientCredentialsProvider(cfg, nil, nil, logging.Discard())
	require.NoError(t, err)

	start := time.Now()
	_, err = tokens.Token(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClientCredentialsProvider_WaitingCallerHonorsContext(t *testing.T) {
	tokens, err := NewClientCredentialsProvider(stalledConfig(t), nil, nil, logging.Discard())
	require.NoError(t, err)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = tokens.Token(firstCtx)
	}()

	// Wait until the first caller holds the fetch slot.
	require.Eventually(t, func() bool { return len(tokens.sem) == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = tokens.Token(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cancelFirst()
	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first caller did not return after cancellation")
	}
}

func TestClient_StalledTokenEndpointStopsRequest(t *testing.T) {
	client, err := NewClient(stalledConfig(t), WithLogger(logging.Discard()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, eventsPath(testUser), nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfig_HTTPClientIsBounded(t *testing.T) {
	assert.Equal(t, DefaultTimeout, Config{}.HTTPClient().Timeout)
	assert.Equal(t, time.Second, Config{Timeout: time.Second}.HTTPClient().Timeout)
}
