package models

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies an account.
type AccountType string

const (
	AccountChecking   AccountType = "CHECKING"
	AccountSavings    AccountType = "SAVINGS"
	AccountCreditCard AccountType = "CREDIT_CARD"
	AccountInvestment AccountType = "INVESTMENT"
	AccountCash       AccountType = "CASH"
	AccountLoan       AccountType = "LOAN"
	AccountOther      AccountType = "OTHER"
)

// DefaultCurrency is applied when an account is created without one.
const DefaultCurrency = "EUR"

// Account is a financial account. Balance is the authoritative running total
// and is only ever changed through the ledger.
type Account struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        AccountType     `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	Active      bool            `json:"active"`
}

// TotalBalance sums the balances of active accounts.
func TotalBalance(accounts []Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if !a.Active {
			continue
		}
		total = total.Add(a.Balance)
	}
	return total
}
