package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpaw/pawdeck/pkg/backendtest"
	"github.com/openpaw/pawdeck/pkg/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	_, srv := backendtest.NewServer(t)
	url := srv.URL
	s := NewServer(&config.AppConfig{Backend: config.BackendConfig{BaseURL: &url}})
	t.Cleanup(s.console.Close)
	return s
}

func serve(s *Server, method, path, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	s.ginEngine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := serve(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"ok"`)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodOptions, "/console/tasks", "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(s, http.MethodGet, "/console/tasks", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMetricsExposeGatewayRequests(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodPost, "/console/dashboard/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `pawdeck_gateway_requests_total{method="GET",op="health",status="200"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
