// Package metrics defines and registers all custom Prometheus metrics for
// the control plane. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "funcland"

// SessionAuthorizationsTotal counts authorize decisions.
// Label:
//   - result: "fast_path" (active interval not elapsed, no provider round
//     trip), "verified" (provider round trip succeeded), or "rejected"
//     (no session, expired, or verification failed)
var SessionAuthorizationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_authorizations_total",
		Help:      "Total number of session authorization decisions, by result.",
	},
	[]string{"result"},
)

// SessionsIssuedTotal counts sign-in attempts.
// Label:
//   - result: "issued" or "rejected"
var SessionsIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of session issue attempts, by result.",
	},
	[]string{"result"},
)

// DeploymentsCreatedTotal counts newly created deployments.
var DeploymentsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deployments_created_total",
		Help:      "Total number of deployments created.",
	},
)

// BuildResultsTotal counts build outcomes reported by workers.
// Label:
//   - outcome: "success" or "failed"
var BuildResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "build_results_total",
		Help:      "Total number of build results recorded, by outcome.",
	},
	[]string{"outcome"},
)

// PromotionsTotal counts production promotion attempts.
// Label:
//   - result: "ok" (swap committed or idempotent no-op), "conflict"
//     (lost the compare-and-swap race), or "rejected" (precondition failed)
var PromotionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotions_total",
		Help:      "Total number of production promotion attempts, by result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of audit events waiting in each worker
// channel.
// Label:
//   - worker_id: numeric worker index ("0", "1", ...)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending per dispatcher worker.",
	},
	[]string{"worker_id"},
)
