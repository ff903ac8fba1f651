package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gophi/app"
	"gophi/internal"
	"gophi/internal/cache"
	"gophi/internal/config"
	"gophi/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Phi.NumberOfCores = 2
	logger := internal.NewLoggerTo(io.Discard, internal.LogLevelError)
	svc := app.NewAnalysisService(cfg, nil, logger)
	return NewServer(svc, config.ServerConfig{GinMode: gin.TestMode, Timeout: time.Minute}, logger)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// TestHealth verifies the liveness endpoint
func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// TestPostSIA verifies an SIA of a built-in example
func TestPostSIA(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/v1/sia", app.AnalysisRequest{Network: "basic"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report app.SIAReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2.3125, report.Phi)
	assert.Equal(t, "(1, 2)|(0,)", report.Cut)
	assert.Len(t, report.Concepts, 4)
}

// TestPostSIAFormats verifies rendered responses
func TestPostSIAFormats(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/v1/sia?format=html", app.AnalysisRequest{Network: "basic"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<table>")

	w = do(t, s, http.MethodPost, "/v1/sia?format=markdown", app.AnalysisRequest{Network: "basic"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# SIA (0, 1, 2)")

	w = do(t, s, http.MethodPost, "/v1/sia?format=pdf", app.AnalysisRequest{Network: "basic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestPostComplexes verifies the major complex over HTTP
func TestPostComplexes(t *testing.T) {
	req := app.ComplexesRequest{AnalysisRequest: app.AnalysisRequest{Network: "basic"}, Major: true}
	w := do(t, newTestServer(t), http.MethodPost, "/v1/complexes", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report app.ComplexesReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "major", report.Mode)
	require.Len(t, report.Complexes, 1)
	assert.Equal(t, []int{0, 1, 2}, report.Complexes[0].Nodes)
}

// TestRequestErrors verifies error codes map onto HTTP statuses
func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed body", "/v1/sia", "not an object", http.StatusBadRequest, errors.CodeInvalidInput},
		{"file paths refused", "/v1/sia", app.AnalysisRequest{Network: "/etc/passwd"}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"file paths refused for complexes", "/v1/complexes", app.AnalysisRequest{Network: "net.yaml"}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"bad state", "/v1/sia", app.AnalysisRequest{Network: "basic", State: []int{1}}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"unreachable state", "/v1/sia", app.AnalysisRequest{Network: "basic", State: []int{0, 1, 0}}, http.StatusUnprocessableEntity, errors.CodeStateUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

// TestCacheEndpoints verifies stats and flush
func TestCacheEndpoints(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/v1/ces", app.AnalysisRequest{Network: "basic"}).Code)

	w := do(t, s, http.MethodGet, "/v1/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats cache.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Greater(t, stats.Concepts, 0)

	w = do(t, s, http.MethodPost, "/v1/cache/flush", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flushed app.FlushResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flushed))
	assert.Greater(t, flushed.Concepts, 0)
}
