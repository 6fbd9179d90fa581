// Package csvparse reads transaction import files.
package csvparse

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/rocjay1/rm-finance/internal/money"
)

// Required columns. Payee, Description, Reference and Notes are optional.
const (
	ColDate        = "Date"
	ColAccount     = "Account"
	ColCategory    = "Category"
	ColType        = "Type"
	ColAmount      = "Amount"
	ColDescription = "Description"
	ColPayee       = "Payee"
	ColReference   = "Reference"
	ColNotes       = "Notes"
)

var required = []string{ColDate, ColAccount, ColCategory, ColAmount}

// ParseCSV parses transactions from content. It returns the rows that parsed
// and one message per row that did not. Account and Category hold whatever
// the file says; the importer resolves them to IDs.
//
// Type may be left blank, in which case a negative amount is an EXPENSE and
// any other amount is INCOME. When Type is given the amount must not be
// negative.
func ParseCSV(content string) ([]models.Transaction, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.Transaction{}, nil
	}

	headers := parseHeaders(records[0])
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, []string{fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", "))}
	}

	var transactions []models.Transaction
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		rowMap := make(map[string]string, len(headers))
		for j, header := range headers {
			rowMap[header] = strings.TrimSpace(record[j])
		}

		t, err := mapToTransaction(rowMap)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		transactions = append(transactions, t)
	}

	return transactions, errors
}

func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return headers
}

func missingColumns(headers []string) []string {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	var missing []string
	for _, col := range required {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func mapToTransaction(row map[string]string) (models.Transaction, error) {
	dateStr := row[ColDate]
	if dateStr == "" {
		return models.Transaction{}, fmt.Errorf("missing Date")
	}
	date, err := models.ParseDate(dateStr)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid Date format: %s", dateStr)
	}

	account := row[ColAccount]
	if account == "" {
		return models.Transaction{}, fmt.Errorf("missing Account")
	}
	category := row[ColCategory]
	if category == "" {
		return models.Transaction{}, fmt.Errorf("missing Category")
	}

	amountStr := row[ColAmount]
	if amountStr == "" {
		return models.Transaction{}, fmt.Errorf("missing Amount")
	}
	amount, err := money.Parse(amountStr)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid Amount: %s", amountStr)
	}

	typ := models.TransactionType(strings.ToUpper(row[ColType]))
	switch {
	case typ == "":
		typ = models.TransactionIncome
		if amount.IsNegative() {
			typ = models.TransactionExpense
			amount = amount.Neg()
		}
	case !typ.Valid():
		return models.Transaction{}, fmt.Errorf("invalid Type: %s", row[ColType])
	case amount.IsNegative():
		return models.Transaction{}, fmt.Errorf("negative Amount %s with explicit Type %s", amountStr, typ)
	}

	return models.Transaction{
		AccountID:   account,
		CategoryID:  category,
		Amount:      amount,
		Type:        typ,
		Date:        date,
		Description: row[ColDescription],
		Payee:       row[ColPayee],
		Reference:   row[ColReference],
		Notes:       row[ColNotes],
	}, nil
}
