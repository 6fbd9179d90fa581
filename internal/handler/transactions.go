package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

type transactionRequest struct {
	AccountID         string                 `json:"account_id"`
	TransferAccountID string                 `json:"transfer_account_id"`
	CategoryID        string                 `json:"category_id"`
	Amount            decimal.Decimal        `json:"amount"`
	Type              models.TransactionType `json:"type"`
	Date              date                   `json:"transaction_date"`
	Description       string                 `json:"description"`
	Payee             string                 `json:"payee"`
	Reference         string                 `json:"reference"`
	Notes             string                 `json:"notes"`
	Reconciled        bool                   `json:"reconciled"`
}

func (req transactionRequest) model(ownerID, id string) models.Transaction {
	return models.Transaction{
		ID:                id,
		OwnerID:           ownerID,
		AccountID:         req.AccountID,
		TransferAccountID: req.TransferAccountID,
		CategoryID:        req.CategoryID,
		Amount:            req.Amount,
		Type:              req.Type,
		Date:              req.Date.Time,
		Description:       req.Description,
		Payee:             req.Payee,
		Reference:         req.Reference,
		Notes:             req.Notes,
		Reconciled:        req.Reconciled,
	}
}

// HandleCreateTransaction books a new transaction on its account.
func (d *Dependencies) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := d.Ledger.Create(r.Context(), req.model(owner, uuid.NewString()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, t)
}

// HandleUpdateTransaction replaces a transaction and moves its balance
// effect accordingly.
func (d *Dependencies) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := d.Ledger.Update(r.Context(), req.model(owner, r.PathValue("id")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// HandleDeleteTransaction removes a transaction and reverses its effect.
func (d *Dependencies) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	if err := d.Ledger.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetTransaction returns one transaction.
func (d *Dependencies) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	t, err := d.Store.GetTransaction(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// HandleListTransactions lists transactions dated within start_date and
// end_date, optionally narrowed to one account_id.
func (d *Dependencies) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := d.requireOwner(w, r)
	if !ok {
		return
	}
	period, err := d.queryPeriod(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	all, err := d.Store.ListTransactions(r.Context(), owner, period.Start, period.End)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := []models.Transaction{}
	accountID := r.URL.Query().Get("account_id")
	for _, t := range all {
		if accountID == "" || t.AccountID == accountID {
			out = append(out, t)
		}
	}
	WriteJSON(w, http.StatusOK, out)
}
