// Package metrics holds the Prometheus instruments exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the counters and histograms the engine records. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	balanceAdjustments *prometheus.CounterVec
	writeConflicts     *prometheus.CounterVec
	budgetRecomputes   prometheus.Counter
	importedRows       *prometheus.CounterVec
	summaryDuration    prometheus.Histogram
}

// New creates the instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		balanceAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finance",
			Name:      "balance_adjustments_total",
			Help:      "Balance deltas written to accounts, by lifecycle event.",
		}, []string{"event"}),
		writeConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finance",
			Name:      "balance_write_conflicts_total",
			Help:      "Optimistic concurrency conflicts on account balances, by outcome.",
		}, []string{"outcome"}),
		budgetRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finance",
			Name:      "budget_recomputes_total",
			Help:      "Budget spent snapshots recomputed.",
		}),
		importedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finance",
			Name:      "import_rows_total",
			Help:      "CSV rows processed by the import pipeline, by result.",
		}, []string{"result"}),
		summaryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "finance",
			Name:      "dashboard_summary_seconds",
			Help:      "Time spent building a dashboard summary.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.balanceAdjustments,
		m.writeConflicts,
		m.budgetRecomputes,
		m.importedRows,
		m.summaryDuration,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// BalanceAdjusted counts one balance delta written for event (create, update, delete, rollback).
func (m *Metrics) BalanceAdjusted(event string) {
	if m == nil {
		return
	}
	m.balanceAdjustments.WithLabelValues(event).Inc()
}

// ConflictRetried counts a conflict that was retried.
func (m *Metrics) ConflictRetried() {
	if m == nil {
		return
	}
	m.writeConflicts.WithLabelValues("retried").Inc()
}

// ConflictExhausted counts a conflict that surfaced after all retries.
func (m *Metrics) ConflictExhausted() {
	if m == nil {
		return
	}
	m.writeConflicts.WithLabelValues("exhausted").Inc()
}

// BudgetRecomputed counts one spent recomputation.
func (m *Metrics) BudgetRecomputed() {
	if m == nil {
		return
	}
	m.budgetRecomputes.Inc()
}

// RowImported counts an imported CSV row; result is "created", "skipped" or "failed".
func (m *Metrics) RowImported(result string) {
	if m == nil {
		return
	}
	m.importedRows.WithLabelValues(result).Inc()
}

// ObserveSummary records how long a summary took, in seconds.
func (m *Metrics) ObserveSummary(seconds float64) {
	if m == nil {
		return
	}
	m.summaryDuration.Observe(seconds)
}
