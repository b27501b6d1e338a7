// Package metrics defines and registers the custom Prometheus metrics of the
// adverts API. Request counts and latencies come from the echoprometheus
// middleware; this package only covers what it cannot see.
//
// The collectors are registered with the default registry through promauto at
// package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adverts"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Advert metrics ────────────────────────────────────────────────────────────

// AdvertMutationsTotal counts committed and failed advert mutations.
// Labels:
//   - operation: "create", "update", "patch" or "delete"
//   - result: "ok", "not_found", "invalid" or "error"
var AdvertMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "advert_mutations_total",
		Help:      "Total number of advert mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// PatchOperationsPerDocument observes how many operations a patch document
// carries.
var PatchOperationsPerDocument = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "patch_operations_per_document",
		Help:      "Number of operations in each received patch document.",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
	},
)
