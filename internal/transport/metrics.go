package transport

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const statusTransportError = "transport_error"

// Metrics groups the Prometheus collectors recorded per API call.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers and returns the client collectors. Registering twice
// against the same registerer reuses the existing collectors.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wave_client_requests_total",
			Help:      "Wave API calls by method, route and response status.",
		}, []string{"method", "route", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wave_client_request_duration_ms",
			Help:      "Wave API call latency in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"method", "route"}),
	}
	if err := reg.Register(m.Requests); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(fmt.Errorf("register counter: %w", err))
		}
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			m.Requests = existing
		}
	}
	if err := reg.Register(m.Duration); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(fmt.Errorf("register histogram: %w", err))
		}
		if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
			m.Duration = existing
		}
	}
	return m
}

func (m *Metrics) observe(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, status).Inc()
	m.Duration.WithLabelValues(method, route).Observe(float64(d) / float64(time.Millisecond))
}

func statusLabel(code int) string {
	return strconv.Itoa(code)
}
