package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/httpapi"
	"github.com/edgard/plexybot/internal/knowledge"
)

type fakeSource struct {
	degraded bool
	pingErr  error
	stats    knowledge.Stats
	statsErr error
}

func (f fakeSource) Degraded() bool             { return f.degraded }
func (f fakeSource) Ping(context.Context) error { return f.pingErr }
func (f fakeSource) Stats(context.Context) (knowledge.Stats, error) {
	return f.stats, f.statsErr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    fakeSource
		path   string
		status int
	}{
		{name: "health", path: "/healthz", status: http.StatusOK},
		{name: "health while degraded", src: fakeSource{degraded: true}, path: "/healthz", status: http.StatusOK},
		{name: "ready", path: "/readyz", status: http.StatusOK},
		{name: "degraded not ready", src: fakeSource{degraded: true}, path: "/readyz", status: http.StatusServiceUnavailable},
		{name: "ping failure not ready", src: fakeSource{pingErr: errors.New("down")}, path: "/readyz", status: http.StatusServiceUnavailable},
		{name: "stats", path: "/stats", status: http.StatusOK},
		{name: "stats failure", src: fakeSource{statsErr: errors.New("boom")}, path: "/stats", status: http.StatusInternalServerError},
		{name: "unknown route", path: "/nope", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := get(t, httpapi.NewHandler(tt.src, nil), tt.path)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestStatsBody(t *testing.T) {
	t.Parallel()
	src := fakeSource{stats: knowledge.Stats{Plants: 7, Vitamins: 6, Users: 3, Feedback: 1}}

	rec := get(t, httpapi.NewHandler(src, nil), "/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got knowledge.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, src.stats, got)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	srv := httpapi.NewServer(addr, httpapi.NewHandler(fakeSource{}, nil), nil)
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
