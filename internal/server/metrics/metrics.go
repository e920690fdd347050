// Package metrics exposes Prometheus counters for the authentication flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthTotal counts auth operations by name and outcome
	// (operation: register|login|refresh|logout, outcome: ok|fail).
	AuthTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthtrack_auth_operations_total",
		Help: "Total auth operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// IssuedTokens counts issued tokens by type (access|refresh).
	IssuedTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthtrack_issued_tokens_total",
		Help: "Total issued tokens by type.",
	}, []string{"type"})
)
