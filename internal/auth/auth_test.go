package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/micro-nova/hapticd/internal/auth"
)

func writeKeysJSON(t *testing.T, dir string, keys map[string]string) {
	t.Helper()
	data, err := json.Marshal(keys)
	if err != nil {
		t.Fatalf("json.Marshal keys: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keys.json"), data, 0644); err != nil {
		t.Fatalf("WriteFile keys.json: %v", err)
	}
}

func newService(t *testing.T, dir string) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(dir)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// --- Open mode (no keys.json) ---

func TestService_OpenMode(t *testing.T) {
	svc := newService(t, t.TempDir())

	if !svc.IsOpenMode() {
		t.Error("IsOpenMode() = false, want true when no keys.json")
	}
	if svc.VerifyKey("") {
		t.Error("VerifyKey(\"\") = true, want false")
	}
	if svc.VerifyKey("any-key") {
		t.Error("VerifyKey(any-key) = true with no keys, want false")
	}
}

func TestMiddleware_OpenMode_PassesThrough(t *testing.T) {
	svc := newService(t, t.TempDir())

	rec := httptest.NewRecorder()
	svc.Middleware(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/on", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 in open mode", rec.Code)
	}
}

// --- Keys configured ---

func TestService_VerifyKey(t *testing.T) {
	dir := t.TempDir()
	writeKeysJSON(t, dir, map[string]string{"phone": "secret-1", "watch": "secret-2"})
	svc := newService(t, dir)

	if svc.IsOpenMode() {
		t.Error("IsOpenMode() = true with keys configured")
	}
	for _, k := range []string{"secret-1", "secret-2"} {
		if !svc.VerifyKey(k) {
			t.Errorf("VerifyKey(%q) = false, want true", k)
		}
	}
	if svc.VerifyKey("secret-3") {
		t.Error("VerifyKey(secret-3) = true, want false")
	}
}

func TestMiddleware_RequiresKey(t *testing.T) {
	dir := t.TempDir()
	writeKeysJSON(t, dir, map[string]string{"phone": "secret-1"})
	svc := newService(t, dir)
	h := svc.Middleware(okHandler)

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
	}{
		{"no key", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api", nil) }, http.StatusUnauthorized},
		{"header", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api", nil)
			r.Header.Set("X-API-Key", "secret-1")
			return r
		}, http.StatusOK},
		{"query", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api?api-key=secret-1", nil) }, http.StatusOK},
		{"wrong key", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api", nil)
			r.Header.Set("X-API-Key", "nope")
			return r
		}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.req())
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestNewService_CorruptKeysFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "keys.json"), []byte("{broken"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := auth.NewService(dir); err == nil {
		t.Error("NewService with corrupt keys.json should fail")
	}
}

func TestService_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, dir)

	writeKeysJSON(t, dir, map[string]string{"phone": "fresh"})

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if svc.VerifyKey("fresh") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("keys.json change was not picked up by the watcher")
}

func TestService_EmptyKeyIgnored(t *testing.T) {
	dir := t.TempDir()
	writeKeysJSON(t, dir, map[string]string{"blank": ""})
	svc := newService(t, dir)

	if !svc.IsOpenMode() {
		t.Error("IsOpenMode() = false, want true when the only key is empty")
	}
}
