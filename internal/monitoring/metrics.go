// Package monitoring holds the Prometheus collectors and the Echo middleware
// that feeds them.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ActiveRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	InteractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_interactions_total",
			Help: "Graph and engagement mutations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// Interaction kinds and outcomes used as label values.
const (
	KindFollow   = "follow"
	KindUnfollow = "unfollow"
	KindLike     = "like"
	KindUnlike   = "unlike"
	KindComment  = "comment"
	KindPost     = "post"
	KindDelete   = "delete_post"

	OutcomeApplied = "applied"
	OutcomeNoop    = "noop"
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{HttpRequestsTotal, HttpRequestDuration, ActiveRequests, InteractionsTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordInteraction counts one mutation; applied reports whether state changed.
func RecordInteraction(kind string, applied bool) {
	outcome := OutcomeNoop
	if applied {
		outcome = OutcomeApplied
	}
	InteractionsTotal.WithLabelValues(kind, outcome).Inc()
}
