package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeAddr(t *testing.T) {
	tests := []struct {
		name string
		bind string
		want string
	}{
		{"wildcard ipv4", "0.0.0.0:5000", "127.0.0.1:5000"},
		{"wildcard ipv6", "[::]:5000", "127.0.0.1:5000"},
		{"empty host", ":5000", "127.0.0.1:5000"},
		{"explicit host", "192.168.1.10:8080", "192.168.1.10:8080"},
		{"localhost", "localhost:5000", "localhost:5000"},
		{"unparseable", "not-an-address", "not-an-address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, probeAddr(tt.bind))
		})
	}
}

func TestWaitHTTPImmediate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := waitHTTP(context.Background(), srv.URL, 2*time.Second)
	require.NoError(t, err)
}

func TestWaitHTTPEventually(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := waitHTTP(context.Background(), srv.URL, 5*time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
}

func TestWaitHTTPTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := waitHTTP(context.Background(), srv.URL, 300*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not answer 200")
}

func TestWaitHTTPCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitHTTP(ctx, srv.URL, 5*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
