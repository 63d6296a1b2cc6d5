package middleware

import (
	"net/http"
	"strconv"

	"github.com/tendant/ayah-auth/internal/config"
)

type header struct {
	name  string
	value string
}

// SecurityHeaders creates middleware that sets the configured response
// security headers. Empty values are skipped.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	var headers []header
	add := func(name, value string) {
		if value != "" {
			headers = append(headers, header{name: name, value: value})
		}
	}
	add("Content-Security-Policy", cfg.CSP)
	if cfg.HSTSMaxAge > 0 {
		add("Strict-Transport-Security", "max-age="+strconv.Itoa(cfg.HSTSMaxAge)+"; includeSubDomains")
	}
	add("X-Frame-Options", cfg.FrameOptions)
	add("X-Content-Type-Options", cfg.ContentTypeOptions)
	add("X-XSS-Protection", cfg.XSSProtection)
	add("Referrer-Policy", cfg.ReferrerPolicy)
	add("Permissions-Policy", cfg.PermissionsPolicy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range headers {
				w.Header().Set(h.name, h.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
