package npm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Metric outcome labels.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "npmkit_commands_total",
			Help: "Total number of npm command lines executed",
		},
		[]string{"operation", "outcome"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "npmkit_command_duration_seconds",
			Help:    "Duration of npm command lines in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	rejectedInputsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "npmkit_rejected_inputs_total",
			Help: "Total number of package specs and paths rejected before reaching the shell",
		},
		[]string{"operation", "rule"},
	)

	viewCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "npmkit_view_cache_lookups_total",
			Help: "Registry metadata cache lookups by result",
		},
		[]string{"result"},
	)

	registryLimiterWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "npmkit_registry_limiter_wait_seconds",
			Help:    "Time registry-bound commands waited for the rate limiter",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 30},
		},
		[]string{"operation"},
	)

	registryBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "npmkit_registry_breaker_state",
			Help: "Registry circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

func recordCommand(operation string, failed bool, elapsed time.Duration) {
	outcome := outcomeSuccess
	if failed {
		outcome = outcomeFailure
	}
	commandsTotal.WithLabelValues(operation, outcome).Inc()
	commandDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func recordRejection(operation, rule string) {
	rejectedInputsTotal.WithLabelValues(operation, rule).Inc()
}

func recordLimiterWait(operation string, waited time.Duration) {
	registryLimiterWait.WithLabelValues(operation).Observe(waited.Seconds())
}

func recordBreakerState(state gobreaker.State) {
	var value float64
	switch state {
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	registryBreakerState.Set(value)
}

func recordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	viewCacheLookups.WithLabelValues(result).Inc()
}
