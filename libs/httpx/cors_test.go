package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func corsHandler(cfg CORSPolicy) http.Handler {
	return WithCORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestWithCORSNoOpWithoutOrigins(t *testing.T) {
	h := corsHandler(CORSPolicy{})

	req := httptest.NewRequest(http.MethodGet, "http://api.local/x", nil)
	req.Header.Set("Origin", "https://app.navalha.app")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS headers, got Allow-Origin %q", got)
	}
}

func TestWithCORSPreflight(t *testing.T) {
	h := corsHandler(CORSPolicy{
		AllowedOrigins: []string{"https://app.navalha.app"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         10 * time.Minute,
	})

	req := httptest.NewRequest(http.MethodOptions, "http://api.local/x", nil)
	req.Header.Set("Origin", "https://app.navalha.app")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if rw.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rw.Code)
	}
	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "https://app.navalha.app" {
		t.Fatalf("unexpected Allow-Origin %q", got)
	}
	if got := rw.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Fatalf("unexpected Allow-Methods %q", got)
	}
	if got := rw.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("unexpected Max-Age %q", got)
	}
}

func TestWithCORSActualRequest(t *testing.T) {
	h := corsHandler(CORSPolicy{
		AllowedOrigins: []string{"https://app.navalha.app"},
		AllowedMethods: []string{"GET", "POST"},
	})

	req := httptest.NewRequest(http.MethodGet, "http://api.local/x", nil)
	req.Header.Set("Origin", "https://app.navalha.app")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "https://app.navalha.app" {
		t.Fatalf("unexpected Allow-Origin %q", got)
	}
	if got := rw.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Fatalf("Allow-Methods is preflight-only, got %q", got)
	}
}

func TestWithCORSRejectsUnknownOrigin(t *testing.T) {
	h := corsHandler(CORSPolicy{AllowedOrigins: []string{"https://app.navalha.app"}})

	req := httptest.NewRequest(http.MethodGet, "http://api.local/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no Allow-Origin for unknown origin, got %q", got)
	}
	if got := rw.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestWithCORSWildcardCredentials(t *testing.T) {
	h := corsHandler(CORSPolicy{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
	})

	req := httptest.NewRequest(http.MethodGet, "http://api.local/x", nil)
	req.Header.Set("Origin", "https://app.navalha.app")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)

	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "https://app.navalha.app" {
		t.Fatalf("wildcard with credentials must echo the origin, got %q", got)
	}
	if got := rw.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected Allow-Credentials true, got %q", got)
	}
}
