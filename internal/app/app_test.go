package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/soart-backend/internal/platform/logger"
)

func newTestApp(t *testing.T, metrics bool) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := defaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.MetricsEnabled = metrics
	normalize(&cfg)

	a, err := NewWithConfig(logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func serve(a *App, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)
	return rec
}

func TestAppWiresCanvasRoutes(t *testing.T) {
	a := newTestApp(t, false)

	rec := serve(a, http.MethodPost, "/api/canvas/create", `{"canvas_id":"c1","name":"Demo"}`)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"id":"c1","name":"Demo"}` {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(a, http.MethodGet, "/api/canvas/c1", "")
	if rec.Body.String() != `{"id":"c1","name":"Demo","data":{},"thumbnail":""}` {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("trace context middleware not installed")
	}
	if rec := serve(a, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("metrics should be off: %d", rec.Code)
	}
}

func TestAppCreatesArtifactDir(t *testing.T) {
	a := newTestApp(t, false)
	if st, err := os.Stat(a.Cfg.FilesDir()); err != nil || !st.IsDir() {
		t.Fatalf("artifact dir: %v", err)
	}
	rec := serve(a, http.MethodGet, "/api/magic/file/0123456789abcdef.png", "")
	if rec.Code != http.StatusNotFound || rec.Body.String() != `{"error":"File not found"}` {
		t.Fatalf("missing artifact: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAppMetricsEndpoint(t *testing.T) {
	a := newTestApp(t, true)

	serve(a, http.MethodGet, "/", "")
	rec := serve(a, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "soart_http_requests_total") {
		t.Fatalf("request counter missing from scrape")
	}
}

func TestAppChatWithoutKeyIsConfigurationError(t *testing.T) {
	a := newTestApp(t, false)
	t.Setenv("API_KEY", "")

	rec := serve(a, http.MethodPost, "/api/chat/completions", `{"messages":[{"role":"user","content":"hi"}]}`)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "not_configured") {
		t.Fatalf("chat without key: %d %s", rec.Code, rec.Body.String())
	}
}
