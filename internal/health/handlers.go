// Package health serves liveness and readiness probes for the webhook
// receiver.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/wave-go/internal/common"
)

// Probe checks one dependency.
type Probe func(ctx context.Context) error

// RedisProbe pings client. A nil client always passes so the receiver can
// run without Redis.
func RedisProbe(client *redis.Client) Probe {
	return func(ctx context.Context) error {
		if client == nil {
			return nil
		}
		return client.Ping(ctx).Err()
	}
}

// Handler exposes HTTP handlers for health endpoints. The zero value is
// ready and has no dependencies.
type Handler struct {
	Probes  map[string]Probe
	Timeout time.Duration

	draining atomic.Bool
}

// Drain makes Ready fail so load balancers stop routing before shutdown.
func (h *Handler) Drain() {
	h.draining.Store(true)
}

// Live reports liveness status.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready runs every probe and reports 503 when any fails or the handler is
// draining.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		common.JSONError(w, r, http.StatusServiceUnavailable, "DRAINING", "shutting down")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
	defer cancel()

	names := make([]string, 0, len(h.Probes))
	for name := range h.Probes {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		status[name] = "ok"
		if err := h.Probes[name](ctx); err != nil {
			status[name] = err.Error()
			healthy = false
		}
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func (h *Handler) timeout() time.Duration {
	if h.Timeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.Timeout
}
