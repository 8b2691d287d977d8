// Package security hardens responses served by the webhook receiver.
package security

import (
	"net/http"
	"strconv"
)

// Headers sets response headers suited to a machine-to-machine endpoint.
type Headers struct {
	// HSTSMaxAge is sent as Strict-Transport-Security on TLS requests when
	// positive, in seconds.
	HSTSMaxAge int
}

// Middleware attaches the headers before delegating.
func (h Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("Cache-Control", "no-store")
		headers.Set("Referrer-Policy", "no-referrer")
		if h.HSTSMaxAge > 0 && r.TLS != nil {
			headers.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(h.HSTSMaxAge))
		}
		next.ServeHTTP(w, r)
	})
}
