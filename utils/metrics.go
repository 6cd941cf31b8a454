package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request and domain counters exposed on /metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turjman_http_requests_total",
		Help: "HTTP requests by path and status code.",
	}, []string{"path", "status"})

	PaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turjman_payments_total",
		Help: "Payment submissions by outcome.",
	}, []string{"outcome"})

	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turjman_verifications_total",
		Help: "Chain verifications by result.",
	}, []string{"result"})
)
