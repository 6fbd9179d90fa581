package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.BalanceAdjusted("create")
	m.BalanceAdjusted("create")
	m.BalanceAdjusted("delete")
	m.ConflictRetried()
	m.ConflictExhausted()
	m.BudgetRecomputed()
	m.RowImported("created")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.balanceAdjustments.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.balanceAdjustments.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writeConflicts.WithLabelValues("retried")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writeConflicts.WithLabelValues("exhausted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.budgetRecomputes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.importedRows.WithLabelValues("created")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BalanceAdjusted("create")
		m.ConflictRetried()
		m.ConflictExhausted()
		m.BudgetRecomputed()
		m.RowImported("failed")
		m.ObserveSummary(0.1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.BudgetRecomputed()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "finance_budget_recomputes_total 1")
}
