package restapi

import (
	"net/http"
	"slices"
	"strings"
)

const contentSecurityPolicy = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; " +
	"connect-src 'self'; frame-ancestors 'none';"

// NewSecurityMiddleware adds security headers to every response and answers
// CORS requests for the allowed origins. "*" allows any origin.
func NewSecurityMiddleware(allowedOrigins []string, requestIDHeader string) func(http.Handler) http.Handler {
	anyOrigin := slices.Contains(allowedOrigins, "*")
	exposed := "Retry-After"
	if requestIDHeader != "" {
		exposed = requestIDHeader + ", " + exposed
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// Prevent MIME type sniffing
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking attacks
			h.Set("X-Frame-Options", "DENY")

			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", contentSecurityPolicy)

			origin := r.Header.Get("Origin")
			allowed := origin != "" && (anyOrigin || slices.Contains(allowedOrigins, origin))
			if allowed {
				if anyOrigin {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				h.Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", "Authorization", requestIDHeader}, ", "))
				h.Set("Access-Control-Expose-Headers", exposed)
				h.Set("Access-Control-Max-Age", "86400") // 24 hours
			}

			// Handle preflight OPTIONS requests
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if !allowed {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
