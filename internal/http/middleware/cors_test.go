package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveCORS(origins []string, req *http.Request) (*httptest.ResponseRecorder, bool) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	})
	rec := httptest.NewRecorder()
	CORS(DefaultCORSConfig(origins))(handler).ServeHTTP(rec, req)
	return rec, called
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/customers", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	rec, called := serveCORS([]string{"http://localhost:3000/"}, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allow origin header, got %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/customers", nil)
	req.Header.Set("Origin", "https://unknown.example")

	rec, called := serveCORS([]string{"http://localhost:3000"}, req)

	if !called {
		t.Fatalf("expected simple request to reach the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin header, got %q", got)
	}
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/customers", nil)
	req.Header.Set("Origin", "https://random.example")

	rec, _ := serveCORS([]string{"*"}, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://random.example" {
		t.Fatalf("expected allow origin header, got %q", got)
	}
}

func TestCORSWithoutOriginPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/customers", nil)

	rec, called := serveCORS([]string{"http://localhost:3000"}, req)

	if !called || rec.Code != http.StatusCreated {
		t.Fatalf("expected passthrough, got %d (called=%v)", rec.Code, called)
	}
	if rec.Header().Get("Vary") != "" {
		t.Fatalf("expected no Vary header for same-origin request")
	}
}

func TestCORSHandlesPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/customers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec, called := serveCORS([]string{"http://localhost:3000"}, req)

	if called {
		t.Fatalf("expected handler to not be called on preflight")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Fatalf("unexpected allow methods %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Fatalf("expected allow headers header")
	}
}

func TestCORSRejectsPreflightFromUnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/customers", nil)
	req.Header.Set("Origin", "https://unknown.example")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec, called := serveCORS([]string{"http://localhost:3000"}, req)

	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without calling handler, got %d", rec.Code)
	}
}
