package webhook

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wave-go/apierror"
	"github.com/noah-isme/wave-go/internal/common"
)

// Outcomes passed to Recorder.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeMissing   = "missing"
	OutcomeStale     = "stale"
	OutcomeDuplicate = "duplicate"
	OutcomeTooLarge  = "too_large"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// Recorder receives one outcome per delivery.
type Recorder interface {
	RecordWebhook(strategy, outcome string)
}

// Handler authenticates deliveries before passing them on. Verified
// deliveries reach the next handler with the body restored and the decoded
// Event available through EventFromContext.
type Handler struct {
	Verifier Verifier
	// MaxBodyBytes bounds the body read; zero disables the limit.
	MaxBodyBytes int64
	// Tolerance rejects signing-secret deliveries whose timestamp is further
	// than this from Now. Zero disables the check.
	Tolerance time.Duration
	Replay    ReplayGuard
	ReplayTTL time.Duration
	Recorder  Recorder
	Logger    *zerolog.Logger
	Now       func() time.Time
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, status := h.readBody(r)
		if status != 0 {
			if status == http.StatusRequestEntityTooLarge {
				h.reject(w, r, status, OutcomeTooLarge, "PAYLOAD_TOO_LARGE", "request entity too large")
				return
			}
			h.reject(w, r, status, OutcomeMalformed, "INVALID_BODY", "unable to read payload")
			return
		}

		valid, err := h.Verifier.Verify(r.Header, body)
		if err != nil {
			if apierror.IsPrecondition(err) {
				h.reject(w, r, http.StatusUnauthorized, OutcomeMissing, "MISSING_SIGNATURE", err.Error())
				return
			}
			h.reject(w, r, http.StatusInternalServerError, OutcomeError, "WEBHOOK_MISCONFIGURED", err.Error())
			return
		}
		if !valid {
			h.reject(w, r, http.StatusUnauthorized, OutcomeRejected, "INVALID_SIGNATURE", "signature verification failed")
			return
		}
		if h.Tolerance > 0 {
			signedAt, ok := h.Verifier.SignedAt(r.Header)
			if ok && absDuration(h.now().Sub(signedAt)) > h.Tolerance {
				h.reject(w, r, http.StatusUnauthorized, OutcomeStale, "STALE_SIGNATURE", "signature timestamp outside tolerance")
				return
			}
		}

		evt, err := DecodeEvent(body)
		if err != nil {
			h.reject(w, r, http.StatusBadRequest, OutcomeMalformed, "INVALID_EVENT", "unable to decode event")
			return
		}

		key := ReplayKey(body)
		claimed := false
		if h.Replay != nil && h.ReplayTTL > 0 {
			ok, err := h.Replay.Claim(r.Context(), key, h.ReplayTTL)
			if err != nil {
				h.reject(w, r, http.StatusInternalServerError, OutcomeError, "REPLAY_STORE_ERROR", err.Error())
				return
			}
			if !ok {
				h.reject(w, r, http.StatusConflict, OutcomeDuplicate, "REPLAY", "duplicate webhook")
				return
			}
			claimed = true
		}

		h.record(OutcomeAccepted)
		h.logger().Info().
			Str("event_id", evt.ID).
			Str("event_type", string(evt.Type)).
			Str("strategy", string(h.Verifier.Strategy)).
			Msg("webhook_verified")

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		completed := false
		if claimed {
			// A failed or panicking downstream handler lets Wave redeliver.
			// The release outlives a cancelled request context.
			defer func() {
				if completed && ww.Status() < http.StatusInternalServerError {
					return
				}
				if err := h.Replay.Release(context.WithoutCancel(r.Context()), key); err != nil {
					h.logger().Warn().Err(err).Str("event_id", evt.ID).Msg("webhook_replay_release_failed")
				}
			}()
		}
		next.ServeHTTP(ww, r.WithContext(WithEvent(r.Context(), evt)))
		completed = true
	})
}

func (h Handler) readBody(r *http.Request) ([]byte, int) {
	if r.Body == nil {
		return nil, 0
	}
	defer func() { _ = r.Body.Close() }()
	if h.MaxBodyBytes > 0 && r.ContentLength > h.MaxBodyBytes {
		return nil, http.StatusRequestEntityTooLarge
	}
	reader := io.Reader(r.Body)
	if h.MaxBodyBytes > 0 {
		reader = io.LimitReader(r.Body, h.MaxBodyBytes+1)
	}
	buf, err := io.ReadAll(reader)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, http.StatusBadRequest
	}
	if h.MaxBodyBytes > 0 && int64(len(buf)) > h.MaxBodyBytes {
		return nil, http.StatusRequestEntityTooLarge
	}
	return buf, 0
}

func (h Handler) reject(w http.ResponseWriter, r *http.Request, status int, outcome, code, message string) {
	h.record(outcome)
	h.logger().Warn().
		Int("status", status).
		Str("outcome", outcome).
		Str("strategy", string(h.Verifier.Strategy)).
		Str("remote_ip", common.ClientIP(r)).
		Msg("webhook_rejected")
	common.JSONError(w, r, status, code, message)
}

func (h Handler) record(outcome string) {
	if h.Recorder != nil {
		h.Recorder.RecordWebhook(string(h.Verifier.Strategy), outcome)
	}
}

func (h Handler) logger() *zerolog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

func (h Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
