package csvparse

import (
	"testing"
	"time"

	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_Valid(t *testing.T) {
	content := `Date,Account,Category,Type,Amount,Description,Payee
2026-08-17,Checking,Groceries,EXPENSE,42.5,Weekly shop,Market
2026-08-18,Checking,Salary,income,"2500,00",August,ACME`

	transactions, errors := ParseCSV(content)
	require.Empty(t, errors)
	require.Len(t, transactions, 2)

	t1 := transactions[0]
	assert.Equal(t, time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC), t1.Date)
	assert.Equal(t, "Checking", t1.AccountID)
	assert.Equal(t, "Groceries", t1.CategoryID)
	assert.Equal(t, models.TransactionExpense, t1.Type)
	assert.True(t, t1.Amount.Equal(decimal.RequireFromString("42.5")))
	assert.Equal(t, "Weekly shop", t1.Description)
	assert.Equal(t, "Market", t1.Payee)

	t2 := transactions[1]
	assert.Equal(t, models.TransactionIncome, t2.Type)
	assert.True(t, t2.Amount.Equal(decimal.NewFromInt(2500)))
}

func TestParseCSV_InfersTypeFromSign(t *testing.T) {
	content := `Date,Account,Category,Amount
2026-08-17,acc,food,-12.30
2026-08-18,acc,salary,100`

	transactions, errors := ParseCSV(content)
	require.Empty(t, errors)
	require.Len(t, transactions, 2)

	assert.Equal(t, models.TransactionExpense, transactions[0].Type)
	assert.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("12.30")))
	assert.Equal(t, models.TransactionIncome, transactions[1].Type)
}

func TestParseCSV_Whitespace(t *testing.T) {
	content := " Date , Account , Category , Amount \n 2026-08-17 , acc , food , 42.5 "

	transactions, errors := ParseCSV(content)
	require.Empty(t, errors)
	require.Len(t, transactions, 1)
	assert.Equal(t, "acc", transactions[0].AccountID)
}

func TestParseCSV_InvalidRows(t *testing.T) {
	content := `Date,Account,Category,Type,Amount
2026-13-01,acc,food,EXPENSE,1
2026-08-17,,food,EXPENSE,1
2026-08-17,acc,food,REFUND,1
2026-08-17,acc,food,EXPENSE,abc
2026-08-17,acc,food,EXPENSE,-5
2026-08-17,acc
2026-08-17,acc,food,EXPENSE,5`

	transactions, errors := ParseCSV(content)
	assert.Len(t, transactions, 1)
	require.Len(t, errors, 6)
	assert.Contains(t, errors[0], "Row 2: invalid Date format")
	assert.Contains(t, errors[1], "Row 3: missing Account")
	assert.Contains(t, errors[2], "Row 4: invalid Type")
	assert.Contains(t, errors[3], "Row 5: invalid Amount")
	assert.Contains(t, errors[4], "Row 6: negative Amount")
	assert.Contains(t, errors[5], "Row 7: Not enough fields")
}

func TestParseCSV_MissingColumns(t *testing.T) {
	transactions, errors := ParseCSV("Date,Amount\n2026-08-17,5")
	assert.Empty(t, transactions)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "Account, Category")
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	transactions, errors := ParseCSV("Date,Account,Category,Amount\n")
	assert.Empty(t, transactions)
	assert.Empty(t, errors)
}
