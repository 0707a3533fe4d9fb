package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foreningshub_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// InvitationsCreated counts created invitations by origin (single|bulk).
	InvitationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foreningshub_invitations_created_total",
			Help: "Total number of invitations created",
		},
		[]string{"origin"},
	)

	// InvitationAcceptances counts acceptance attempts by outcome
	// (accepted|invalid|account_failed|member_failed|link_failed).
	InvitationAcceptances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foreningshub_invitation_acceptances_total",
			Help: "Total number of invitation acceptance attempts",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foreningshub_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
