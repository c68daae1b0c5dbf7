package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leslieo2/agent-service/internal/config"
	"github.com/leslieo2/agent-service/internal/contract"
	"github.com/leslieo2/agent-service/internal/health"
	"github.com/leslieo2/agent-service/internal/observability"
)

type fixedReporter struct {
	status health.HealthStatus
}

func (f fixedReporter) GetHealth() health.HealthStatus { return f.status }

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	opts = append([]Option{WithLogger(observability.NewNopLogger())}, opts...)
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func decodeHealth(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	c, err := contract.Load()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.NoError(t, c.ValidateHealth(rec.Body.Bytes()))

	doc := decodeHealth(t, rec.Body.Bytes())
	assert.Equal(t, "ok", doc["status"])
	assert.Equal(t, "agent_service", doc["service"])

	ts, err := health.ParseTimestamp(doc["timestamp"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestHealthHandler_IgnoresRequestInput(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health?status=down&service=other", strings.NewReader(`{"status":"down"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service", "spoofed")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	doc := decodeHealth(t, rec.Body.Bytes())
	assert.Equal(t, "ok", doc["status"])
	assert.Equal(t, "agent_service", doc["service"])
}

func TestHealthHandler_ConfiguredServiceName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Service.Name = "risk_agent"
	s, err := New(cfg, WithLogger(observability.NewNopLogger()))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "risk_agent", decodeHealth(t, rec.Body.Bytes())["service"])
}

func TestHealthHandler_RepeatedRequestsDifferOnlyInTimestamp(t *testing.T) {
	ticks := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 1000, time.UTC),
	}
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}
	reporter := health.NewReporter(health.Identity{ServiceName: "agent_service"}, health.WithClock(clock))
	s := newTestServer(t, WithReporter(reporter))
	handler := s.Handler()

	// New already consumed one reading for the self-check.
	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))

	a := decodeHealth(t, first.Body.Bytes())
	b := decodeHealth(t, second.Body.Bytes())
	assert.Equal(t, a["status"], b["status"])
	assert.Equal(t, a["service"], b["service"])
	assert.Equal(t, "2024-01-01T00:00:00.000001Z", a["timestamp"])
	assert.Equal(t, "2024-01-01T00:00:00.000001Z", b["timestamp"])
}

func TestHealthHandler_TimestampNonDecreasing(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	var prev time.Time
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		ts, err := health.ParseTimestamp(decodeHealth(t, rec.Body.Bytes())["timestamp"].(string))
		require.NoError(t, err)
		assert.False(t, ts.Before(prev))
		prev = ts
	}
}

func TestHandler_Routing(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectBody     bool
	}{
		{name: "GET health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK, expectBody: true},
		{name: "HEAD health", method: http.MethodHead, path: "/health", expectedStatus: http.StatusOK},
		{name: "POST health", method: http.MethodPost, path: "/health", expectedStatus: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/ready", expectedStatus: http.StatusNotFound},
		{name: "root", method: http.MethodGet, path: "/", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			if tt.expectBody {
				assert.NotEmpty(t, body)
			}
			if tt.method == http.MethodHead {
				assert.Empty(t, body)
			}
		})
	}
}

func TestHealthHandler_ConcurrentRequests(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c, err := contract.Load()
	require.NoError(t, err)

	const n = 100
	bodies := make([][]byte, n)
	codes := make([]int, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := srv.Client().Get(srv.URL + "/health")
			if err != nil {
				errs[i] = err
				return
			}
			defer resp.Body.Close()
			codes[i] = resp.StatusCode
			bodies[i], errs[i] = io.ReadAll(resp.Body)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i], "request %d", i)
		assert.Equal(t, http.StatusOK, codes[i], "request %d", i)
		assert.NoError(t, c.ValidateHealth(bodies[i]), "request %d", i)
	}
}

func TestNew_SelfCheckRejectsBrokenReporter(t *testing.T) {
	broken := fixedReporter{status: health.HealthStatus{Status: "ok", Service: "agent_service", Timestamp: "now"}}

	_, err := New(config.DefaultConfig(), WithLogger(observability.NewNopLogger()), WithReporter(broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health self-check failed")
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := newTestServer(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	baseURL := "http://" + listener.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, listener)
	}()

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(baseURL + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeHealth(t, body)["status"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}

	_, err = client.Get(baseURL + "/health")
	assert.Error(t, err)
}

func TestServer_RunRejectsBusyPort(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	_, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = port
	s, err := New(cfg, WithLogger(observability.NewNopLogger()))
	require.NoError(t, err)

	err = s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
