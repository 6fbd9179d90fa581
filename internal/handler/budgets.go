package handler

import (
	"net/http"

	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

type budgetRequest struct {
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Amount         decimal.Decimal     `json:"amount"`
	Period         models.BudgetPeriod `json:"period"`
	StartDate      date                `json:"start_date"`
	EndDate        date                `json:"end_date"`
	CategoryID     string              `json:"category_id"`
	AlertThreshold decimal.Decimal     `json:"alert_threshold"`
}

func (req budgetRequest) model(ownerID, id string) models.Budget {
	return models.Budget{
		ID:             id,
		OwnerID:        ownerID,
		Name:           req.Name,
		Description:    req.Description,
		Amount:         req.Amount,
		Period:         req.Period,
		StartDate:      req.StartDate.Time,
		EndDate:        req.EndDate.Time,
		CategoryID:     req.CategoryID,
		AlertThreshold: req.AlertThreshold,
	}
}

func budgetViews(budgets []models.Budget) []budget.View {
	out := make([]budget.View, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budget.NewView(b))
	}
	return out
}

// HandleCreateBudget creates a budget with its spent snapshot filled in.
func (d *Dependencies) HandleCreateBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := d.Budgets.Create(r.Context(), req.model(owner, ""))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, budget.NewView(b))
}

// HandleUpdateBudget replaces a budget and recomputes what has been spent.
func (d *Dependencies) HandleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := d.Budgets.Update(r.Context(), req.model(owner, r.PathValue("id")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, budget.NewView(b))
}

// HandleDeleteBudget removes a budget.
func (d *Dependencies) HandleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	if err := d.Budgets.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleBudget flips a budget between active and inactive.
func (d *Dependencies) HandleToggleBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	b, err := d.Budgets.Toggle(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, budget.NewView(b))
}

// HandleRecomputeBudget refreshes the spent snapshot of one budget.
func (d *Dependencies) HandleRecomputeBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	b, err := d.Budgets.Recompute(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, budget.NewView(b))
}

// HandleListBudgets lists every budget as last snapshotted.
func (d *Dependencies) HandleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	budgets, err := d.Budgets.List(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, budgetViews(budgets))
}

// HandleCurrentBudgets lists the active budgets whose window contains today.
func (d *Dependencies) HandleCurrentBudgets(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	budgets, err := d.Budgets.Current(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, budgetViews(budgets))
}

// HandleBudgetAlerts recomputes the current budgets and returns those at or
// over their alert threshold.
func (d *Dependencies) HandleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	alerts, err := d.Budgets.Alerts(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []budget.View{}
	}
	WriteJSON(w, http.StatusOK, alerts)
}
