package security

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Headers sets response headers for the JSON API. Paths under one of the
// Exempt prefixes (the Prometheus scrape endpoint) are left untouched.
type Headers struct {
	HSTS       bool
	HSTSMaxAge time.Duration
	Exempt     []string
}

// Middleware attaches the headers before calling next.
func (h Headers) Middleware(next http.Handler) http.Handler {
	hsts := ""
	if h.HSTS {
		age := h.HSTSMaxAge
		if age <= 0 {
			age = 365 * 24 * time.Hour
		}
		hsts = "max-age=" + strconv.FormatInt(int64(age/time.Second), 10) + "; includeSubDomains"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range h.Exempt {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		headers.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		// compensation amounts must never be served from a shared cache
		headers.Set("Cache-Control", "no-store")
		if hsts != "" && r.TLS != nil {
			headers.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}
