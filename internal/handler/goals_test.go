package handler

import (
	"net/http"
	"testing"

	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGoal(t *testing.T, deps *Dependencies, name, target, targetDate, priority string) goal.View {
	t.Helper()
	w := call(t, deps, http.MethodPost, "/api/goals", map[string]any{
		"name":          name,
		"target_amount": target,
		"target_date":   targetDate,
		"priority":      priority,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[goal.View](t, w)
}

func TestGoals_ProgressAndStatus(t *testing.T) {
	deps, _ := newTestDeps(t)
	g := createGoal(t, deps, "Car", "1000", "2026-12-31", "")

	assert.Equal(t, models.GoalInProgress, g.Status)
	assert.Equal(t, models.PriorityMedium, g.Priority)
	assert.True(t, g.RemainingAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 199, g.DaysRemaining)

	w := call(t, deps, http.MethodPut, "/api/goals/"+g.ID+"/progress", map[string]any{"amount": "400"})
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[goal.View](t, w)
	assert.True(t, v.PercentageCompleted.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, models.GoalInProgress, v.Status)

	w = call(t, deps, http.MethodPost, "/api/goals/"+g.ID+"/progress", map[string]any{"amount": "600"})
	require.Equal(t, http.StatusOK, w.Code)
	v = decode[goal.View](t, w)
	assert.Equal(t, models.GoalCompleted, v.Status)
	assert.True(t, v.Completed)

	w = call(t, deps, http.MethodPut, "/api/goals/"+g.ID+"/status", map[string]any{"status": "PAUSED"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.GoalPaused, decode[goal.View](t, w).Status)

	w = call(t, deps, http.MethodPut, "/api/goals/"+g.ID+"/status", map[string]any{"status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, deps, http.MethodPut, "/api/goals/"+g.ID+"/progress", map[string]any{"amount": "-5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoals_Lists(t *testing.T) {
	deps, _ := newTestDeps(t)
	late := createGoal(t, deps, "Holiday", "500", "2026-01-01", "LOW")
	urgent := createGoal(t, deps, "Roof", "5000", "2027-03-01", "CRITICAL")
	paused := createGoal(t, deps, "Boat", "9000", "2026-02-01", "HIGH")

	w := call(t, deps, http.MethodPut, "/api/goals/"+paused.ID+"/status", map[string]any{"status": "PAUSED"})
	require.Equal(t, http.StatusOK, w.Code)

	w = call(t, deps, http.MethodGet, "/api/goals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]goal.View](t, w)
	require.Len(t, all, 3)
	assert.Equal(t, late.ID, all[0].ID)
	assert.Equal(t, urgent.ID, all[2].ID)

	w = call(t, deps, http.MethodGet, "/api/goals/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decode[[]goal.View](t, w)
	require.Len(t, active, 2)
	assert.Equal(t, urgent.ID, active[0].ID)
	assert.Equal(t, late.ID, active[1].ID)

	w = call(t, deps, http.MethodGet, "/api/goals/overdue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	overdue := decode[[]goal.View](t, w)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.True(t, overdue[0].Overdue)
}

func TestGoals_UpdateGetDelete(t *testing.T) {
	deps, _ := newTestDeps(t)
	g := createGoal(t, deps, "Car", "1000", "2026-12-31", "LOW")

	w := call(t, deps, http.MethodPut, "/api/goals/"+g.ID, map[string]any{
		"name":          "Better car",
		"target_amount": "2000",
		"target_date":   "2027-06-30",
		"account_id":    "acc-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v := decode[goal.View](t, w)
	assert.Equal(t, "Better car", v.Name)
	assert.Equal(t, models.PriorityLow, v.Priority, "blank priority keeps the stored one")

	w = call(t, deps, http.MethodPut, "/api/goals/"+g.ID, map[string]any{
		"name": "Car", "target_amount": "1000", "target_date": "2026-12-31", "account_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, deps, http.MethodGet, "/api/goals/"+g.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[goal.View](t, w).TargetAmount.Equal(decimal.NewFromInt(2000)))

	w = call(t, deps, http.MethodDelete, "/api/goals/"+g.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, deps, http.MethodGet, "/api/goals/"+g.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGoals_CreateRequiresTargetDate(t *testing.T) {
	deps, _ := newTestDeps(t)

	w := call(t, deps, http.MethodPost, "/api/goals", map[string]any{"name": "x", "target_amount": "10"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
