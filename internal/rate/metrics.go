package rate

import "github.com/prometheus/client_golang/prometheus"

var (
	remainingGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "acwatch_rate_limit_remaining",
			Help: "Tokens left in the provider rate-limit window",
		},
		[]string{"provider", "window"},
	)
	retryAfterGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "acwatch_rate_limit_retry_after_seconds",
			Help: "Last Retry-After cooldown requested by the provider",
		},
		[]string{"provider"},
	)
	lastStatusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "acwatch_rate_limit_last_status_code",
			Help: "Last HTTP status code observed by the rate-limit wrapper",
		},
		[]string{"provider"},
	)
	blockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acwatch_rate_limit_blocked_total",
			Help: "Calls blocked by the rate-limit wrapper",
		},
		[]string{"provider", "reason"},
	)
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acwatch_rate_limit_cache_hits_total",
			Help: "Blocked calls answered from the response cache",
		},
		[]string{"provider"},
	)
)

// MetricsCollectors exposes shared rate-limit collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		remainingGauge,
		retryAfterGauge,
		lastStatusGauge,
		blockedTotal,
		cacheHits,
	}
}
