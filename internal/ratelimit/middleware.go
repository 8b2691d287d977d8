package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/wave-go/internal/common"
)

// Handler enforces a per-client limit before delegating to the next handler.
type Handler struct {
	Limiter Limiter
	Window  time.Duration
	Max     int
	// Key derives the bucket for a request. When nil the connection address
	// is used, or the forwarded client IP if TrustProxy is set.
	Key func(*http.Request) string
	// TrustProxy honours X-Forwarded-For and X-Real-IP. Enable only behind a
	// proxy that overwrites them.
	TrustProxy bool
	// OnError observes limiter failures. Requests fail open.
	OnError func(error)
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := h.key(r)
		d, err := h.Limiter.Allow(r.Context(), key, h.Window, h.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Max, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
		if !d.Allowed {
			retryAfter := int(time.Until(d.ResetAt).Seconds())
			headers.Set("Retry-After", strconv.Itoa(max(retryAfter, 0)))
			common.JSONError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h Handler) key(r *http.Request) string {
	switch {
	case h.Key != nil:
		return h.Key(r)
	case h.TrustProxy:
		return common.ClientIP(r)
	default:
		return common.RemoteIP(r)
	}
}
