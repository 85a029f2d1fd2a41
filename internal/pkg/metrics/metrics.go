package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CreditsDebited counts credits deducted for billed actions, by action kind.
	CreditsDebited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutoria_credits_debited_total",
		Help: "Credits deducted for billed AI actions",
	}, []string{"action"})

	// CreditsRefunded counts credits returned after failed billed actions.
	CreditsRefunded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutoria_credits_refunded_total",
		Help: "Credits refunded after failed AI actions",
	}, []string{"action"})

	// PaymentsSettled counts webhook settlements by outcome
	// (settled, duplicate, not_found, rejected).
	PaymentsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutoria_payments_settled_total",
		Help: "Payment webhook settlement outcomes",
	}, []string{"outcome"})

	// AIRequestDuration tracks latency of the external inference call.
	AIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tutoria_ai_request_duration_seconds",
		Help:    "External AI inference call latency",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"action", "status"})
)

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
