// Package metrics holds the Prometheus collectors shared by the gateway and
// the view controllers.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is registered explicitly on a caller supplied registry so tests can
// build as many instances as they like.
type Metrics struct {
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	Mutations       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GatewayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pawdeck",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Backend requests by operation and outcome",
			},
			[]string{"op", "method", "status"},
		),
		GatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pawdeck",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Backend request latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"op"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pawdeck",
				Subsystem: "sync",
				Name:      "mutations_total",
				Help:      "View mutations by outcome (ok, failed, rolled_back, stale)",
			},
			[]string{"view", "op", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.GatewayRequests, m.GatewayDuration, m.Mutations)
	}
	return m
}

// ObserveRequest records one finished backend call. status is 0 when the
// request never got a response.
func (m *Metrics) ObserveRequest(op, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.GatewayRequests.WithLabelValues(op, method, label).Inc()
	m.GatewayDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveMutation(view, op, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(view, op, outcome).Inc()
}
