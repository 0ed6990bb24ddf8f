package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records scan and merge outcomes.
type LedgerMetrics struct {
	scans      *prometheus.CounterVec
	merges     *prometheus.CounterVec
	mergeRows  *prometheus.CounterVec
	rosterSize *prometheus.GaugeVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_total",
		Help: "Scan authorization outcomes per gateway.",
	}, []string{"gateway", "outcome"})
	merges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "merge_total",
		Help: "Bulk merge operations per gateway.",
	}, []string{"gateway", "result"})
	mergeRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "merge_rows_failed_total",
		Help: "Snapshot rows rejected during bulk merges.",
	}, []string{"gateway"})
	rosterSize := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "roster_members",
		Help: "Member records currently in a gateway roster.",
	}, []string{"gateway"})
	reg.MustRegister(scans, merges, mergeRows, rosterSize)
	return &LedgerMetrics{
		scans:      scans,
		merges:     merges,
		mergeRows:  mergeRows,
		rosterSize: rosterSize,
	}
}

// ObserveScan increments the scan counter for the given outcome.
func (m *LedgerMetrics) ObserveScan(gateway, outcome string) {
	if m == nil || m.scans == nil {
		return
	}
	m.scans.WithLabelValues(normalizeLabel(gateway), normalizeLabel(outcome)).Inc()
}

// ObserveMerge increments the merge counter and the failed-row counter.
func (m *LedgerMetrics) ObserveMerge(gateway, result string, failedRows int) {
	if m == nil || m.merges == nil {
		return
	}
	m.merges.WithLabelValues(normalizeLabel(gateway), normalizeLabel(result)).Inc()
	if failedRows > 0 {
		m.mergeRows.WithLabelValues(normalizeLabel(gateway)).Add(float64(failedRows))
	}
}

// SetRosterSize records the current member count for a gateway.
func (m *LedgerMetrics) SetRosterSize(gateway string, size int) {
	if m == nil || m.rosterSize == nil {
		return
	}
	m.rosterSize.WithLabelValues(normalizeLabel(gateway)).Set(float64(size))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
