package probe

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService mimics the deployed admin surface well enough for the probes
func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"admin-service"}`))
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# HELP admin_http_requests_total Total requests\nadmin_http_requests_total 12\n"))
	})
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid or expired token"}`))
			return
		}
		w.Write([]byte(`{"user":{"id":1}}`))
	})
	return httptest.NewServer(mux)
}

func TestHealthProbesPass(t *testing.T) {
	srv := fakeService(t)
	defer srv.Close()

	r := NewRunner(srv.URL, 5*time.Second)
	results := r.Run(context.Background(), HealthProbes())

	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Passed, "%s: %v", res.Name, res.Err)
	}
}

func TestAuthProbesAgainstRealBoundary(t *testing.T) {
	srv := fakeService(t)
	defer srv.Close()

	r := NewRunner(srv.URL, 5*time.Second)
	r.Token = "good-token"
	results := r.Run(context.Background(), AuthProbes())

	for _, res := range results {
		assert.True(t, res.Passed, "%s: %v", res.Name, res.Err)
	}
}

func TestProbesFailAgainstBrokenService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := NewRunner(srv.URL, 5*time.Second)
	results := r.Run(context.Background(), HealthProbes())

	for _, res := range results {
		assert.False(t, res.Passed, "%s should fail against a broken service", res.Name)
		assert.Error(t, res.Err)
	}
}

func TestRunnerTrimsTrailingSlash(t *testing.T) {
	r := NewRunner("http://example.com/", time.Second)
	assert.Equal(t, "http://example.com", r.BaseURL)
}

func TestReport(t *testing.T) {
	results := []Result{
		{Name: "health endpoint returns healthy", Passed: true, Latency: 12 * time.Millisecond},
		{Name: "metrics endpoint is exposed", Passed: false, Latency: 8 * time.Millisecond, Err: assert.AnError},
	}

	var buf bytes.Buffer
	ok := Report(&buf, results)

	assert.False(t, ok)
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "PASS"), out)
	assert.True(t, strings.HasPrefix(lines[1], "FAIL"), out)
}

func TestReportAllPassing(t *testing.T) {
	results := []Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: true},
	}

	var buf bytes.Buffer
	assert.True(t, Report(&buf, results))
	assert.NotContains(t, buf.String(), "FAIL")
}
