package auth

import (
	"net/http"
)

const (
	apiKeyHeader     = "X-API-Key"
	apiKeyQueryParam = "api-key"
)

// Middleware rejects requests without a valid API key. In open mode (no keys
// configured) all requests pass through. The key is read from the X-API-Key
// header, then from the api-key query parameter.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.IsOpenMode() {
			next.ServeHTTP(w, r)
			return
		}
		if s.VerifyKey(r.Header.Get(apiKeyHeader)) || s.VerifyKey(r.URL.Query().Get(apiKeyQueryParam)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"UNAUTHORIZED","message":"authentication required"}` + "\n"))
	})
}
