// Package metrics holds the prometheus counters shared by the
// provider fallback engine and the confirmation poller.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OUTCOME_SUCCESS = "success"
	OUTCOME_FAILURE = "failure"
	OUTCOME_SKIPPED = "skipped"

	OUTCOME_CONFIRMED   = "confirmed"
	OUTCOME_UNCONFIRMED = "unconfirmed"
)

var (
	prometheusProviderCalls     *prometheus.CounterVec
	prometheusFallbackExhausted prometheus.Counter
	prometheusConfirmationPolls *prometheus.CounterVec
	prometheusSendsTotal        *prometheus.CounterVec

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multiwallet",
			Name:      "provider_calls_total",
			Help:      "Number of provider calls made by the fallback engine",
		},
		[]string{"endpoint", "outcome"},
	)
	prometheusFallbackExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "multiwallet",
			Name:      "fallback_exhausted_total",
			Help:      "Number of requests where every provider failed",
		},
	)
	prometheusConfirmationPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multiwallet",
			Name:      "confirmation_polls_total",
			Help:      "Number of confirmation polls by outcome",
		},
		[]string{"outcome"},
	)
	prometheusSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "multiwallet",
			Name:      "sends_total",
			Help:      "Number of send requests by asset and outcome",
		},
		[]string{"asset", "outcome"},
	)
}

func ProviderCall(endpoint string, outcome string) {
	initPrometheusMetrics()
	prometheusProviderCalls.WithLabelValues(endpoint, outcome).Inc()
}

func FallbackExhausted() {
	initPrometheusMetrics()
	prometheusFallbackExhausted.Inc()
}

func ConfirmationPoll(outcome string) {
	initPrometheusMetrics()
	prometheusConfirmationPolls.WithLabelValues(outcome).Inc()
}

func Send(asset string, outcome string) {
	initPrometheusMetrics()
	prometheusSendsTotal.WithLabelValues(asset, outcome).Inc()
}
