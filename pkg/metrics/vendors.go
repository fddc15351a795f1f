package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vendorkyc"

// VendorMetrics tracks application lifecycle counters.
type VendorMetrics struct {
	registrations prometheus.Counter
	transitions   *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
}

// NewVendorMetrics registers the vendor metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewVendorMetrics(reg prometheus.Registerer) *VendorMetrics {
	if reg == nil {
		return &VendorMetrics{}
	}
	registrations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_registrations_total",
		Help:      "Vendor applications created.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_transitions_total",
		Help:      "Vendor status transitions recorded.",
	}, []string{"from", "to"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vendor_conflicts_total",
		Help:      "Mutations that gave up after repeated concurrent modification.",
	}, []string{"operation"})
	reg.MustRegister(registrations, transitions, conflicts)
	return &VendorMetrics{
		registrations: registrations,
		transitions:   transitions,
		conflicts:     conflicts,
	}
}

func (m *VendorMetrics) IncRegistration() {
	if m == nil || m.registrations == nil {
		return
	}
	m.registrations.Inc()
}

func (m *VendorMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *VendorMetrics) IncConflict(operation string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
