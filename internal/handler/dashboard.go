package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rocjay1/rm-finance/internal/analytics"
	"github.com/rocjay1/rm-finance/internal/models"
)

// HandleSummary returns the dashboard for start_date..end_date.
func (d *Dependencies) HandleSummary(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	period, err := d.queryPeriod(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	summary, err := d.Analytics.Summary(r.Context(), owner, period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// HandleCategoryStatistics returns every category's share of the period's
// total, optionally limited to one transaction type.
func (d *Dependencies) HandleCategoryStatistics(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	period, err := d.queryPeriod(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	typ := models.TransactionType(strings.ToUpper(r.URL.Query().Get("type")))
	if typ != "" && !typ.Valid() {
		writeServiceError(w, r, fmt.Errorf("%w: transaction type %q", models.ErrInvalidType, typ))
		return
	}

	stats, err := d.Analytics.CategoryStatistics(r.Context(), owner, period, typ)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if stats == nil {
		stats = []analytics.CategoryStat{}
	}
	WriteJSON(w, http.StatusOK, stats)
}

// HandleTrends returns the monthly trend series for the last months months.
func (d *Dependencies) HandleTrends(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	months := analytics.SummaryTrendMonths
	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "months must be an integer")
			return
		}
		months = n
	}

	trends, err := d.Analytics.Trends(r.Context(), owner, months)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if trends == nil {
		trends = []analytics.MonthlyTrend{}
	}
	WriteJSON(w, http.StatusOK, trends)
}

// HandleCompare contrasts the period with the equal-length period before it.
func (d *Dependencies) HandleCompare(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	period, err := d.queryPeriod(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	cmp, err := d.Analytics.Compare(r.Context(), owner, period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, cmp)
}
