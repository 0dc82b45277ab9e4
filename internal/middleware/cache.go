package middleware

import "net/http"

// NoStore keeps browsers and shared proxies from caching per-user API
// responses such as scores, sessions and history.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		h.Add("Vary", "Authorization")
		next.ServeHTTP(w, r)
	})
}
