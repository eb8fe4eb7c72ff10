// Package metrics defines and registers all custom Prometheus metrics for the
// catalog gateway. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

// ── Pipeline metrics ──────────────────────────────────────────────────────────

// AuthenticationDecisionsTotal counts outcomes of the authentication middleware.
// Label:
//   - outcome: "pass_through", "authenticated", "rejected"
var AuthenticationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentication_decisions_total",
		Help:      "Total number of authentication middleware decisions, by outcome.",
	},
	[]string{"outcome"},
)

// AuthorizationDecisionsTotal counts outcomes of the authorization policy.
// Label:
//   - outcome: "allowed", "unauthenticated", "forbidden"
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization policy decisions, by outcome.",
	},
	[]string{"outcome"},
)

// IdentityLookupDuration measures how long the identity lookup behind a bearer
// token takes (cache hit or storage round trip).
var IdentityLookupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "identity_lookup_duration_seconds",
		Help:      "Duration of identity resolution for authenticated requests.",
		Buckets:   prometheus.DefBuckets,
	},
)

// IdentityCacheTotal counts identity cache lookups.
// Label:
//   - result: "hit", "miss", "error"
var IdentityCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_cache_total",
		Help:      "Total number of identity cache lookups, labelled by result (hit/miss/error).",
	},
	[]string{"result"},
)

// ── Auth flow metrics ─────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created" or "rejected"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// AuthFlowFailuresTotal counts unexpected downstream failures inside auth flows.
// Label:
//   - flow: "registration" or "login"
var AuthFlowFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_flow_failures_total",
		Help:      "Total number of auth flows that failed on a downstream dependency.",
	},
	[]string{"flow"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events handled by the dispatcher workers.
// Labels:
//   - type: the audit event type (e.g. "login_failed")
//   - result: "stored", "error", "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by type and result.",
	},
	[]string{"type", "result"},
)

// AuditQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditProcessingDuration measures how long persisting a single audit event takes.
var AuditProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_processing_duration_seconds",
		Help:      "Duration of audit event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Product metrics ───────────────────────────────────────────────────────────

// ProductMutationsTotal counts successful catalog mutations.
// Label:
//   - op: "create", "update", "delete"
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of successful product mutations, by operation.",
	},
	[]string{"op"},
)
