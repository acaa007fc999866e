package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AccountOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "residuos", Name: "account_operations_total", Help: "Account administration operations by name and outcome."},
		[]string{"operation", "result"},
	)
	RateLimitAllowed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "residuos", Name: "rate_limit_allowed_total", Help: "Requests allowed by the auth rate limiter."},
	)
	RateLimitRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "residuos", Name: "rate_limit_rejected_total", Help: "Requests rejected by the auth rate limiter."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AccountOperations)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
