package handler

import (
	"context"
	"net/http"

	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

type goalRequest struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	TargetAmount  decimal.Decimal     `json:"target_amount"`
	CurrentAmount decimal.Decimal     `json:"current_amount"`
	TargetDate    date                `json:"target_date"`
	Priority      models.GoalPriority `json:"priority"`
	AccountID     string              `json:"account_id"`
	Icon          string              `json:"icon"`
	Color         string              `json:"color"`
}

func (req goalRequest) model(ownerID, id string) models.Goal {
	return models.Goal{
		ID:            id,
		OwnerID:       ownerID,
		Name:          req.Name,
		Description:   req.Description,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    req.TargetDate.Time,
		Priority:      req.Priority,
		AccountID:     req.AccountID,
		Icon:          req.Icon,
		Color:         req.Color,
	}
}

type progressRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type statusRequest struct {
	Status models.GoalStatus `json:"status"`
}

// HandleCreateGoal creates a goal in progress.
func (d *Dependencies) HandleCreateGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := d.Goals.Create(r.Context(), req.model(owner, ""))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, v)
}

// HandleGetGoal returns a goal with its progress as of today.
func (d *Dependencies) HandleGetGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	v, err := d.Goals.Get(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// HandleUpdateGoal replaces the descriptive fields and target of a goal.
func (d *Dependencies) HandleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := d.Goals.Update(r.Context(), req.model(owner, r.PathValue("id")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// HandleDeleteGoal removes a goal.
func (d *Dependencies) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	if err := d.Goals.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetGoalProgress sets the current amount of a goal.
func (d *Dependencies) HandleSetGoalProgress(w http.ResponseWriter, r *http.Request) {
	d.handleProgress(w, r, d.Goals.SetProgress)
}

// HandleAddGoalProgress adds a contribution to a goal.
func (d *Dependencies) HandleAddGoalProgress(w http.ResponseWriter, r *http.Request) {
	d.handleProgress(w, r, d.Goals.AddProgress)
}

type progressFunc func(ctx context.Context, ownerID, id string, amount decimal.Decimal) (goal.View, error)

func (d *Dependencies) handleProgress(w http.ResponseWriter, r *http.Request, apply progressFunc) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req progressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := apply(r.Context(), owner, r.PathValue("id"), req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// HandleGoalStatus moves a goal to the requested status.
func (d *Dependencies) HandleGoalStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := d.Goals.UpdateStatus(r.Context(), owner, r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// HandleListGoals lists every goal by target date.
func (d *Dependencies) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	d.handleGoalList(w, r, d.Goals.List)
}

// HandleActiveGoals lists goals in progress, most urgent first.
func (d *Dependencies) HandleActiveGoals(w http.ResponseWriter, r *http.Request) {
	d.handleGoalList(w, r, d.Goals.Active)
}

// HandleOverdueGoals lists goals in progress whose target date has passed.
func (d *Dependencies) HandleOverdueGoals(w http.ResponseWriter, r *http.Request) {
	d.handleGoalList(w, r, d.Goals.Overdue)
}

func (d *Dependencies) handleGoalList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, ownerID string) ([]goal.View, error)) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	views, err := list(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if views == nil {
		views = []goal.View{}
	}
	WriteJSON(w, http.StatusOK, views)
}
