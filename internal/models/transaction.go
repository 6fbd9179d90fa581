package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType determines the sign a transaction has on its account.
type TransactionType string

const (
	TransactionIncome   TransactionType = "INCOME"
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is a single movement on an account. Amount is stored unsigned;
// Type carries the direction.
type Transaction struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	AccountID         string          `json:"account_id"`
	TransferAccountID string          `json:"transfer_account_id,omitempty"`
	CategoryID        string          `json:"category_id"`
	Amount            decimal.Decimal `json:"amount"`
	Type              TransactionType `json:"type"`
	Date              time.Time       `json:"transaction_date"`
	Description       string          `json:"description,omitempty"`
	Payee             string          `json:"payee,omitempty"`
	Reference         string          `json:"reference,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Reconciled        bool            `json:"reconciled"`

	// Version is the store's concurrency token for the record as read. It is
	// set by GetTransaction and checked by conditional replaces and deletes.
	Version string `json:"-"`
}

// Validate checks the fields the balance arithmetic depends on.
func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative, got %s", ErrInvalidAmount, t.Amount)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidType, t.Type)
	}
	if t.AccountID == "" {
		return fmt.Errorf("%w: account", ErrMissingField)
	}
	if t.CategoryID == "" {
		return fmt.Errorf("%w: category", ErrMissingField)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: transaction date", ErrMissingField)
	}
	return nil
}

// SumByType adds the amounts of transactions of the given type.
func SumByType(transactions []Transaction, typ TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// InRange reports whether the transaction date falls within [start, end], inclusive.
func (t Transaction) InRange(start, end time.Time) bool {
	d := DateOf(t.Date)
	return !d.Before(DateOf(start)) && !d.After(DateOf(end))
}
