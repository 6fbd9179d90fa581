package handler

import (
	"net/http"
	"strings"

	"github.com/rocjay1/rm-finance/internal/ledger"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

type accountRequest struct {
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Type           models.AccountType `json:"type"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	Currency       string             `json:"currency"`
}

// HandleCreateAccount opens an account. The opening balance is the only
// balance ever written outside the ledger.
func (d *Dependencies) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Type == "" {
		req.Type = models.AccountChecking
	}

	a, err := d.Store.CreateAccount(r.Context(), models.Account{
		OwnerID:     owner,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Balance:     req.OpeningBalance,
		Currency:    strings.ToUpper(req.Currency),
		Active:      true,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, a)
}

// HandleListAccounts lists the caller's accounts.
func (d *Dependencies) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	accounts, err := d.Store.ListAccounts(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	WriteJSON(w, http.StatusOK, accounts)
}

// HandleGetAccount returns one account.
func (d *Dependencies) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	a, err := d.Store.GetAccount(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// balanceCheck compares a stored balance with the sum of the account's
// transaction effects. Opening balances are not transactions, so drift is
// the opening balance when nothing is wrong.
type balanceCheck struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Replayed  decimal.Decimal `json:"replayed"`
	Drift     decimal.Decimal `json:"drift"`
	Count     int             `json:"transaction_count"`
}

// HandleVerifyAccount replays the account's transactions against its
// stored balance. It never writes.
func (d *Dependencies) HandleVerifyAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	a, err := d.Store.GetAccount(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	txns, err := d.Store.ListAccountTransactions(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	replayed := ledger.Replay(txns, id)
	WriteJSON(w, http.StatusOK, balanceCheck{
		AccountID: id,
		Balance:   a.Balance,
		Replayed:  replayed,
		Drift:     a.Balance.Sub(replayed),
		Count:     len(txns),
	})
}

type categoryRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        models.CategoryType `json:"type"`
	ParentID    string              `json:"parent_id"`
	Icon        string              `json:"icon"`
	Color       string              `json:"color"`
}

// HandleSaveCategory creates a category, or replaces one when the path
// carries an id.
func (d *Dependencies) HandleSaveCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := d.Categories.Save(r.Context(), models.Category{
		ID:          r.PathValue("id"),
		OwnerID:     owner,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		ParentID:    req.ParentID,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	d.Analytics.InvalidateCategories(owner)

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	WriteJSON(w, status, c)
}

// categoryNode is a category with its path from the root.
type categoryNode struct {
	models.Category
	Path []string `json:"path"`
}

// HandleListCategories lists the caller's categories with their ancestry.
func (d *Dependencies) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	tree, err := d.Categories.Tree(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	all, err := d.Store.ListCategories(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]categoryNode, 0, len(all))
	for _, c := range all {
		ancestors := tree.Ancestors(c.ID)
		path := make([]string, 0, len(ancestors)+1)
		for i := len(ancestors) - 1; i >= 0; i-- {
			path = append(path, ancestors[i].Name)
		}
		out = append(out, categoryNode{Category: c, Path: append(path, c.Name)})
	}
	WriteJSON(w, http.StatusOK, out)
}
