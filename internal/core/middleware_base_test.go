package core

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"capsule/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewServer(&config.Config{Environment: "local"}, logger)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestRecoverer_PanicBecomesJSON500(t *testing.T) {
	s := testServer(t)

	handler := s.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unreachable plan tier")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/plans", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal_unexpected_error") {
		t.Errorf("body = %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "unexpected error") {
		t.Errorf("body = %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "unreachable plan tier") {
		t.Errorf("panic value leaked to client: %s", w.Body.String())
	}
}

type recordingCollector struct {
	method, endpoint, status string
	duration                 time.Duration
	calls                    int
}

func (c *recordingCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	c.method, c.endpoint, c.status, c.duration = method, endpoint, status, duration
	c.calls++
}

func TestMetricsMiddleware_RecordsStatusAndLatency(t *testing.T) {
	s := testServer(t)
	collector := &recordingCollector{}
	s.Metrics = collector

	handler := s.MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/checkout", nil))

	if collector.calls != 1 {
		t.Fatalf("calls = %d", collector.calls)
	}
	if collector.method != http.MethodPost || collector.endpoint != "/v1/checkout" || collector.status != "409" {
		t.Errorf("recorded %s %s %s", collector.method, collector.endpoint, collector.status)
	}
}

func TestMetricsMiddleware_NilCollectorPassesThrough(t *testing.T) {
	s := testServer(t)

	called := false
	handler := s.MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("next handler was not called")
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	s := testServer(t)

	handler := s.SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing frame options header")
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := NewCORSMiddleware([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight should not reach the handler")
	}))

	r := httptest.NewRequest(http.MethodOptions, "/v1/quote", nil)
	r.Header.Set("Origin", "https://capsule.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRequestLogger_RedactsSensitiveHeaders(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogger(logger, []string{"Authorization"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	r := httptest.NewRequest(http.MethodGet, "/v1/plans", nil)
	r.Header.Set("Authorization", "Bearer sk_live_secret")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	out := buf.String()
	if strings.Contains(out, "sk_live_secret") {
		t.Errorf("credential leaked into log: %s", out)
	}
	if !strings.Contains(out, "REDACTED") {
		t.Errorf("redaction marker missing: %s", out)
	}
}
