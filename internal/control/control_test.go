package control

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"taskTracker/internal/server"
	"taskTracker/internal/service"
	"taskTracker/internal/testutil"
	"taskTracker/repository"
)

func newTestAPI(t *testing.T, name string) (*Server, *server.Server) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	logger := zaptest.NewLogger(t)
	svc := service.New(repository.NewUserRepository(d), repository.NewTaskRepository(d), logger)
	listener := server.New(server.NewDispatcher(svc, logger), logger, server.Options{})
	t.Cleanup(func() { _ = listener.Stop() })
	return New(context.Background(), listener, logger), listener
}

func do(t *testing.T, api *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.Engine().ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body %s", w.Body.String())
	return w, out
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI(t, "ctlhealth")
	w, out := do(t, api, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestStartStopLifecycle(t *testing.T) {
	api, listener := newTestAPI(t, "ctllifecycle")

	w, out := do(t, api, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["running"])

	w, out = do(t, api, http.MethodPost, "/api/server/start", map[string]any{"host": "127.0.0.1", "port": 0})
	require.Equal(t, http.StatusOK, w.Code, "body %v", out)
	assert.Equal(t, true, out["running"])
	assert.NotEmpty(t, out["address"])
	assert.True(t, listener.Running())

	w, _ = do(t, api, http.MethodPost, "/api/server/start", map[string]any{"host": "127.0.0.1", "port": 0})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, out = do(t, api, http.MethodPost, "/api/server/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["running"])
	assert.False(t, listener.Running())

	// stopping again is harmless
	w, _ = do(t, api, http.MethodPost, "/api/server/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartValidation(t *testing.T) {
	api, listener := newTestAPI(t, "ctlvalidation")

	for _, body := range []map[string]any{
		{"port": 8888},
		{"host": "localhost", "port": 8888},
		{"host": "127.0.0.1", "port": 70000},
	} {
		w, out := do(t, api, http.MethodPost, "/api/server/start", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
		assert.NotEmpty(t, out["error"])
	}
	assert.False(t, listener.Running())
}
