package apiclient

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is an Observer recording request counts and latencies
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

var _ Observer = (*Metrics)(nil)

// NewMetrics registers the API client metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total number of REST API calls by method and outcome",
		}, []string{"method", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Duration of REST API calls",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
	}
}

func (m *Metrics) Observe(_ context.Context, event Event) {
	m.Requests.WithLabelValues(event.Method, outcome(event)).Inc()
	m.RequestDuration.WithLabelValues(event.Method).Observe(event.Duration.Seconds())
}

// outcome is the status class, or the error kind when no response arrived
func outcome(event Event) string {
	if event.StatusCode == 0 {
		if apiErr, ok := event.Err.(*Error); ok {
			return apiErr.Kind.String()
		}
		return "error"
	}
	return strconv.Itoa(event.StatusCode/100) + "xx"
}
