// Package metrics defines and registers all custom Prometheus metrics for
// the property transfer API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "property"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome and, on success, the class
// of the resolved principal.
// Labels:
//   - result: "success" or "failure"
//   - role: principal class on success, "none" on failure
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts by result and resolved role.",
	},
	[]string{"result", "role"},
)

// TokenRefreshesTotal counts silent access-token renewals performed by the
// auth middleware.
// Label:
//   - result: "success" or "failure"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of silent access-token refreshes.",
	},
	[]string{"result"},
)

// ── Mint metrics ──────────────────────────────────────────────────────────────

// MintsTotal counts mint attempts by outcome.
// Label:
//   - outcome: "confirmed", "rejected", "unreachable", or "signer_error"
var MintsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mints_total",
		Help:      "Total number of ledger mint attempts by outcome.",
	},
	[]string{"outcome"},
)

// MintDuration measures the full ledger round-trip of one mint attempt,
// submission through receipt (or timeout).
var MintDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mint_duration_seconds",
		Help:      "Duration of ledger mint attempts from submission to receipt.",
		Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 90, 120},
	},
)

// MintQueueDepth tracks the number of mint jobs waiting in each worker
// channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MintQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mint_queue_depth",
		Help:      "Current number of mint jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// UnmintedApproved tracks the size of the reconciliation backlog: approved
// requests with no transaction reference at the last sweep.
var UnmintedApproved = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unminted_approved_requests",
		Help:      "Approved requests without a transaction reference at the last reconciler sweep.",
	},
)
