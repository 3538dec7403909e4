// Package metrics exposes the prometheus counters of the identity core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	rateLimited   *prometheus.CounterVec
	discrepancies *prometheus.CounterVec
	flagsAccepted *prometheus.CounterVec
	auditDropped  prometheus.Counter
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kurukshetra",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"route"}),
		discrepancies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kurukshetra",
			Subsystem: "store",
			Name:      "dual_sync_discrepancies_total",
			Help:      "Secondary backend writes that failed after a successful primary write",
		}, []string{"operation", "backend"}),
		flagsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kurukshetra",
			Name:      "flags_accepted_total",
			Help:      "Correct first-time flag submissions",
		}, []string{"slug"}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kurukshetra",
			Subsystem: "audit",
			Name:      "dropped_events_total",
			Help:      "Audit events dropped because the buffer was full",
		}),
	}

	for _, c := range []prometheus.Collector{m.rateLimited, m.discrepancies, m.flagsAccepted, m.auditDropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RateLimited counts a rejected request on route.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

// Discrepancy counts a failed secondary write.
func (m *Metrics) Discrepancy(operation, backend string) {
	if m == nil {
		return
	}
	m.discrepancies.WithLabelValues(operation, backend).Inc()
}

// FlagAccepted counts a credited flag.
func (m *Metrics) FlagAccepted(slug string) {
	if m == nil {
		return
	}
	m.flagsAccepted.WithLabelValues(slug).Inc()
}

// AuditDropped counts an audit event lost to back-pressure.
func (m *Metrics) AuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}
