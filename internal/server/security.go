package server

import "net/http"

// securityHeadersMiddleware marks every response as non-sniffable and
// uncacheable. Bodies are always JSON, so nothing else applies.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
