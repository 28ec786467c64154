package session

import "github.com/prometheus/client_golang/prometheus"

var (
	loginSuccess = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acwatch_session_login_success_total",
			Help: "Successful credential logins",
		},
		[]string{"provider"},
	)
	loginFailure = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acwatch_session_login_failure_total",
			Help: "Failed credential logins",
		},
		[]string{"provider"},
	)
	tokenValid = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "acwatch_session_token_valid",
			Help: "Session bearer token validity (1=valid, 0=invalid)",
		},
		[]string{"provider"},
	)
)

// MetricsCollectors returns collectors for the shared session module.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		loginSuccess,
		loginFailure,
		tokenValid,
	}
}
