package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts_CreateListGet(t *testing.T) {
	deps, _ := newTestDeps(t)

	w := call(t, deps, http.MethodPost, "/api/accounts", map[string]any{
		"name":            "Wallet",
		"type":            "CASH",
		"opening_balance": "25.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Account](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.DefaultCurrency, created.Currency)
	assert.True(t, created.Active)
	assert.True(t, created.Balance.Equal(decimal.RequireFromString("25.50")))

	w = call(t, deps, http.MethodGet, "/api/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Account](t, w), 2)

	w = call(t, deps, http.MethodGet, "/api/accounts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Wallet", decode[models.Account](t, w).Name)

	w = call(t, deps, http.MethodGet, "/api/accounts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccounts_CreateRequiresName(t *testing.T) {
	deps, _ := newTestDeps(t)

	w := call(t, deps, http.MethodPost, "/api/accounts", map[string]any{"name": "  "})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccounts_Verify(t *testing.T) {
	deps, _ := newTestDeps(t)
	ctx := context.Background()

	_, err := deps.Ledger.Create(ctx, models.Transaction{
		ID: "t1", OwnerID: testOwner, AccountID: "acc-1", CategoryID: "cat-pay",
		Amount: decimal.NewFromInt(200), Type: models.TransactionIncome, Date: testToday,
	})
	require.NoError(t, err)
	_, err = deps.Ledger.Create(ctx, models.Transaction{
		ID: "t2", OwnerID: testOwner, AccountID: "acc-1", CategoryID: "cat-food",
		Amount: decimal.NewFromInt(50), Type: models.TransactionExpense, Date: testToday,
	})
	require.NoError(t, err)

	w := call(t, deps, http.MethodGet, "/api/accounts/acc-1/verify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	check := decode[balanceCheck](t, w)
	assert.True(t, check.Balance.Equal(decimal.NewFromInt(1150)))
	assert.True(t, check.Replayed.Equal(decimal.NewFromInt(150)))
	assert.True(t, check.Drift.Equal(decimal.NewFromInt(1000)), "drift is the opening balance")
	assert.Equal(t, 2, check.Count)
}

func TestCategories_SaveAndList(t *testing.T) {
	deps, _ := newTestDeps(t)

	w := call(t, deps, http.MethodPost, "/api/categories", map[string]any{
		"name":      "Produce",
		"type":      "EXPENSE",
		"parent_id": "cat-food",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	child := decode[models.Category](t, w)
	assert.NotEmpty(t, child.ID)

	w = call(t, deps, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	nodes := decode[[]categoryNode](t, w)
	require.Len(t, nodes, 3)
	paths := map[string][]string{}
	for _, n := range nodes {
		paths[n.ID] = n.Path
	}
	assert.Equal(t, []string{"Groceries", "Produce"}, paths[child.ID])
	assert.Equal(t, []string{"Salary"}, paths["cat-pay"])

	w = call(t, deps, http.MethodPut, "/api/categories/cat-food", map[string]any{
		"name":      "Groceries",
		"type":      "EXPENSE",
		"parent_id": child.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "a parent may not be its own descendant")

	w = call(t, deps, http.MethodPut, "/api/categories/cat-food", map[string]any{
		"name": "Food",
		"type": "EXPENSE",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Food", decode[models.Category](t, w).Name)

	w = call(t, deps, http.MethodPost, "/api/categories", map[string]any{"name": "Odd", "type": "OTHER"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
