package handler

import (
	"log/slog"
	"net/http"
	"strings"
)

// Routes registers every API route on a new mux. The Functions host
// triggers (/HttpTrigger, /ProcessQueue, /NightlyTrigger) are included.
func (d *Dependencies) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/accounts", d.HandleListAccounts)
	mux.HandleFunc("POST /api/accounts", d.HandleCreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", d.HandleGetAccount)
	mux.HandleFunc("GET /api/accounts/{id}/verify", d.HandleVerifyAccount)

	mux.HandleFunc("GET /api/categories", d.HandleListCategories)
	mux.HandleFunc("POST /api/categories", d.HandleSaveCategory)
	mux.HandleFunc("PUT /api/categories/{id}", d.HandleSaveCategory)

	mux.HandleFunc("GET /api/transactions", d.HandleListTransactions)
	mux.HandleFunc("POST /api/transactions", d.HandleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", d.HandleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", d.HandleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", d.HandleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", d.HandleListBudgets)
	mux.HandleFunc("POST /api/budgets", d.HandleCreateBudget)
	mux.HandleFunc("GET /api/budgets/current", d.HandleCurrentBudgets)
	mux.HandleFunc("GET /api/budgets/alerts", d.HandleBudgetAlerts)
	mux.HandleFunc("PUT /api/budgets/{id}", d.HandleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", d.HandleDeleteBudget)
	mux.HandleFunc("POST /api/budgets/{id}/toggle", d.HandleToggleBudget)
	mux.HandleFunc("POST /api/budgets/{id}/recompute", d.HandleRecomputeBudget)

	mux.HandleFunc("GET /api/goals", d.HandleListGoals)
	mux.HandleFunc("POST /api/goals", d.HandleCreateGoal)
	mux.HandleFunc("GET /api/goals/active", d.HandleActiveGoals)
	mux.HandleFunc("GET /api/goals/overdue", d.HandleOverdueGoals)
	mux.HandleFunc("GET /api/goals/{id}", d.HandleGetGoal)
	mux.HandleFunc("PUT /api/goals/{id}", d.HandleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", d.HandleDeleteGoal)
	mux.HandleFunc("PUT /api/goals/{id}/progress", d.HandleSetGoalProgress)
	mux.HandleFunc("POST /api/goals/{id}/progress", d.HandleAddGoalProgress)
	mux.HandleFunc("PUT /api/goals/{id}/status", d.HandleGoalStatus)

	mux.HandleFunc("GET /api/dashboard/summary", d.HandleSummary)
	mux.HandleFunc("GET /api/dashboard/categories", d.HandleCategoryStatistics)
	mux.HandleFunc("GET /api/dashboard/trends", d.HandleTrends)
	mux.HandleFunc("GET /api/dashboard/compare", d.HandleCompare)

	mux.HandleFunc("POST /api/upload", d.HandleUpload)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/HttpTrigger", HTTPTrigger(mux))
	mux.HandleFunc("/ProcessQueue", d.ProcessQueue)
	mux.HandleFunc("/NightlyTrigger", d.HandleNightlyTrigger)

	// Log what the host sends when nothing matches.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string, len(r.Header))
		for k, v := range r.Header {
			headers[k] = strings.Join(v, ", ")
		}
		slog.Warn("unmatched request",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", headers,
			"content_length", r.ContentLength,
		)
		http.NotFound(w, r)
	})

	return mux
}
