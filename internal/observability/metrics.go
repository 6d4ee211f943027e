package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	governanceRequestsTotal  *prometheus.CounterVec
	governanceLatencySeconds *prometheus.HistogramVec
	governanceErrorsTotal    *prometheus.CounterVec
	lifecycleTransitions     *prometheus.CounterVec
	auditWriteFailures       *prometheus.CounterVec
	restorableSuppressed     prometheus.Counter
	domainSaves              *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		governanceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_requests_total",
			Help: "Total number of governance API requests served.",
		}, []string{"method", "route", "status"})

		governanceLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "governance_latency_seconds",
			Help:    "Latency distribution for governance API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		governanceErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_errors_total",
			Help: "Total number of error responses returned by governance endpoints.",
		}, []string{"method", "route", "status"})

		lifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assessment_lifecycle_transitions_total",
			Help: "Archive and restore transitions by outcome and failing step.",
		}, []string{"transition", "outcome", "step"})

		auditWriteFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit entries that could not be persisted.",
		}, []string{"action"})

		restorableSuppressed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "restorable_entries_suppressed_total",
			Help: "DELETED audit entries hidden because no archived copy resolves.",
		})

		domainSaves = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assessment_domain_saves_total",
			Help: "Domain saves by domain and resulting domain status.",
		}, []string{"domain", "status"})

		prometheus.MustRegister(
			governanceRequestsTotal,
			governanceLatencySeconds,
			governanceErrorsTotal,
			lifecycleTransitions,
			auditWriteFailures,
			restorableSuppressed,
			domainSaves,
		)
	})
}

// GovernanceRequests exposes the counter for governance requests.
func GovernanceRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return governanceRequestsTotal
}

// GovernanceLatency exposes the latency histogram for governance requests.
func GovernanceLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return governanceLatencySeconds
}

// GovernanceErrors exposes the counter for governance error responses.
func GovernanceErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return governanceErrorsTotal
}

// LifecycleTransitions exposes the archive/restore transition counter.
func LifecycleTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return lifecycleTransitions
}

// AuditWriteFailures exposes the counter of dropped audit entries.
func AuditWriteFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return auditWriteFailures
}

// RestorableSuppressed exposes the counter of hidden DELETED entries.
func RestorableSuppressed() prometheus.Counter {
	RegisterMetrics()
	return restorableSuppressed
}

// DomainSaves exposes the domain save counter.
func DomainSaves() *prometheus.CounterVec {
	RegisterMetrics()
	return domainSaves
}
