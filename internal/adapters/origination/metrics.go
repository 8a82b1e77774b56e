package origination

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "origination_requests_total",
			Help: "Outbound origination calls by endpoint and envelope status.",
		},
		[]string{"endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "origination_request_duration_seconds",
			Help:    "Outbound origination call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	authRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "origination_auth_retries_total",
		Help: "Requests reissued after an expired credential.",
	})

	tokenFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "origination_token_fetches_total",
			Help: "Credential issuance calls by result.",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// RegisterMetrics adds the origination collectors to the default registry
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestsTotal, requestDuration, authRetriesTotal, tokenFetchesTotal)
	})
}
