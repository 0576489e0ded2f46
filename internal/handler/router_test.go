package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/walletauth/internal/metrics"
)

// mockHealthChecker はHealthCheckerのテスト用モック。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// mockSessionPinger はSessionPingerのテスト用モック。
type mockSessionPinger struct {
	err error
}

func (m *mockSessionPinger) Ping(ctx context.Context) error {
	return m.err
}

func newTestRouter(deps *RouterDeps) http.Handler {
	if deps == nil {
		deps = &RouterDeps{}
	}
	if deps.AuthService == nil {
		deps.AuthService = &mockAuthService{}
	}
	if deps.CORSAllowedOrigin == "" {
		deps.CORSAllowedOrigin = "http://localhost:3000"
	}
	return NewRouter(deps)
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
	if body["service"] != "walletauth" {
		t.Errorf("service = %q, want %q", body["service"], "walletauth")
	}
}

func TestRouter_HealthEndpoint_DatabaseDown_Returns503(t *testing.T) {
	router := newTestRouter(&RouterDeps{
		DB: &mockHealthChecker{err: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRouter_HealthEndpoint_SessionStoreDown_Returns503(t *testing.T) {
	router := newTestRouter(&RouterDeps{
		DB:           &mockHealthChecker{},
		SessionStore: &mockSessionPinger{err: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRouter_AuthRoutes_Registered(t *testing.T) {
	router := newTestRouter(nil)

	paths := []string{
		"/auth/google/login",
		"/auth/google/callback?code=c",
		"/auth/verify?token=t",
		"/auth/session/restore?session_id=s",
	}

	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code == http.StatusNotFound && strings.Contains(rec.Body.String(), "404 page not found") {
			t.Errorf("route %s should be registered", path)
		}
	}
}

func TestRouter_UnknownRoute_Returns404(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want %q", got, "DENY")
	}
}

func TestRouter_CORSHeadersApplied(t *testing.T) {
	router := newTestRouter(&RouterDeps{
		CORSAllowedOrigin: "https://wallet.example.com",
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://wallet.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://wallet.example.com")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	router := newTestRouter(&RouterDeps{
		Metrics:  collector,
		Gatherer: reg,
	})

	// 計測対象のリクエストを1回流す
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "walletauth_http_status_total") {
		t.Error("metrics output should contain http status counter")
	}
}

func TestRouter_NoMetrics_MetricsEndpointAbsent(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d when metrics are disabled", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_RecoveryAppliedToPanics(t *testing.T) {
	svc := &mockAuthService{
		verifyTokenFunc: func(tokenString string) (string, error) {
			panic("handler panic")
		},
	}
	router := newTestRouter(&RouterDeps{AuthService: svc})

	req := httptest.NewRequest(http.MethodGet, "/auth/verify?token=t", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
