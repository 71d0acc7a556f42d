// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus metrics.
type Collector struct {
	claims  *prometheus.CounterVec
	signUps prometheus.Counter
	signIns prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_username_claims_total",
			Help: "Username claim attempts by result.",
		}, []string{"result"}),
		signUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_sign_ups_total",
			Help: "Completed sign-ups.",
		}),
		signIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_sign_ins_total",
			Help: "Completed sign-ins.",
		}),
	}

	reg.MustRegister(c.claims, c.signUps, c.signIns)
	return c
}

// RecordClaim counts one claim attempt with the given result
// (success, rejected, conflict, validation_error, store_error).
func (c *Collector) RecordClaim(result string) {
	c.claims.WithLabelValues(result).Inc()
}

// RecordSignUp counts one completed sign-up.
func (c *Collector) RecordSignUp() {
	c.signUps.Inc()
}

// RecordSignIn counts one completed sign-in.
func (c *Collector) RecordSignIn() {
	c.signIns.Inc()
}

// SetupMetricsRoute returns the handler serving the /metrics endpoint for reg.
func SetupMetricsRoute(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}
