package healthapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviegrab/moviegrab-go-bot/internal/config"
)

func newTestServer(t *testing.T, probe ReadinessProbe) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Bind = "127.0.0.1:0"

	logger := zerolog.Nop()
	srv := httptest.NewServer(NewServer(cfg, probe, &logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/", "/health"} {
		status, body := get(t, srv.URL+path)
		assert.Equal(t, http.StatusOK, status, path)
		assert.JSONEq(t, `{"status":"OK","message":"Bot is running!"}`, body, path)
	}
}

func TestHealthBodyIsStable(t *testing.T) {
	srv := newTestServer(t, nil)

	_, first := get(t, srv.URL+"/health")
	_, second := get(t, srv.URL+"/health")
	assert.Equal(t, first, second)
	assert.Equal(t, "{\"status\":\"OK\",\"message\":\"Bot is running!\"}\n", first)
}

func TestReadyzWithoutProbe(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := get(t, srv.URL+"/readyz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body)
}

func TestReadyzProbePasses(t *testing.T) {
	srv := newTestServer(t, func(ctx context.Context) error { return nil })

	status, _ := get(t, srv.URL+"/readyz")
	assert.Equal(t, http.StatusOK, status)
}

func TestReadyzProbeFails(t *testing.T) {
	srv := newTestServer(t, func(ctx context.Context) error {
		return errors.New("no bot process found")
	})

	status, body := get(t, srv.URL+"/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	var er errorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &er))
	assert.Equal(t, "no bot process found", er.Error)
	assert.Equal(t, http.StatusServiceUnavailable, er.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	get(t, srv.URL+"/health")
	status, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "moviegrab_healthd_http_requests_total")
	assert.Contains(t, body, "moviegrab_healthd_http_request_duration_seconds")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Bind = "127.0.0.1:0"
	cfg.GracefulTimeout = 1

	logger := zerolog.Nop()
	s := NewServer(cfg, nil, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
