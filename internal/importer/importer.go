// Package importer books the rows of a CSV import through the ledger.
package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocjay1/rm-finance/internal/csvparse"
	"github.com/rocjay1/rm-finance/internal/metrics"
	"github.com/rocjay1/rm-finance/internal/models"
)

// Store is what the importer reads to resolve names and spot rows that were
// already booked.
type Store interface {
	ListAccounts(ctx context.Context, ownerID string) ([]models.Account, error)
	ListCategories(ctx context.Context, ownerID string) ([]models.Category, error)
	GetTransaction(ctx context.Context, ownerID, id string) (models.Transaction, error)
}

// Booker creates a transaction and applies its balance effect.
type Booker interface {
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
}

// Result is the outcome of one import. Errors holds one message per row
// that was not booked, including the rows the parser rejected. Duplicates
// counts rows skipped because an earlier import already booked them.
type Result struct {
	Created    []models.Transaction `json:"created"`
	Duplicates int                  `json:"duplicates"`
	Errors     []string             `json:"errors"`
}

// Importer resolves and books parsed rows.
type Importer struct {
	store   Store
	ledger  Booker
	metrics *metrics.Metrics
}

// New creates an Importer.
func New(store Store, ledger Booker, m *metrics.Metrics) *Importer {
	return &Importer{store: store, ledger: ledger, metrics: m}
}

// Import parses content and books every valid row for ownerID. A row that
// fails does not stop the rest. Row IDs are derived from the row content, so
// importing the same file twice books each row once. The returned error is
// only set when the lookups needed to resolve rows could not be loaded.
func (im *Importer) Import(ctx context.Context, ownerID, content string) (Result, error) {
	rows, parseErrors := csvparse.ParseCSV(content)
	res := Result{Created: []models.Transaction{}, Errors: parseErrors}
	for range parseErrors {
		im.metrics.RowImported("skipped")
	}
	if len(rows) == 0 {
		return res, nil
	}

	accounts, err := im.store.ListAccounts(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("failed to list accounts: %w", err)
	}
	categories, err := im.store.ListCategories(ctx, ownerID)
	if err != nil {
		return res, fmt.Errorf("failed to list categories: %w", err)
	}
	resolveAccount := newResolver(accounts, func(a models.Account) (string, string) { return a.ID, a.Name })
	resolveCategory := newResolver(categories, func(c models.Category) (string, string) { return c.ID, c.Name })

	seen := make(map[string]int)
	for _, t := range rows {
		label := fmt.Sprintf("%s %s %s", t.Date.Format(models.DateLayout), t.AccountID, t.Amount)

		accountID, ok := resolveAccount(t.AccountID)
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown account %q", label, t.AccountID))
			im.metrics.RowImported("skipped")
			continue
		}
		categoryID, ok := resolveCategory(t.CategoryID)
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown category %q", label, t.CategoryID))
			im.metrics.RowImported("skipped")
			continue
		}

		t.OwnerID = ownerID
		t.AccountID = accountID
		t.CategoryID = categoryID
		fp := fingerprint(t)
		t.ID = rowID(fp, seen[fp])
		seen[fp]++

		_, err := im.store.GetTransaction(ctx, ownerID, t.ID)
		switch {
		case err == nil:
			res.Duplicates++
			im.metrics.RowImported("skipped")
			continue
		case !errors.Is(err, models.ErrNotFound):
			return res, fmt.Errorf("failed to check transaction %s: %w", t.ID, err)
		}

		created, err := im.ledger.Create(ctx, t)
		if errors.Is(err, models.ErrAlreadyExists) {
			// A concurrent import of the same file booked the row first.
			res.Duplicates++
			im.metrics.RowImported("skipped")
			continue
		}
		if err != nil {
			slog.Warn("import row rejected", "owner_id", ownerID, "row", label, "error", err)
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", label, err))
			im.metrics.RowImported("failed")
			continue
		}
		res.Created = append(res.Created, created)
		im.metrics.RowImported("created")
	}

	slog.Info("import complete",
		"owner_id", ownerID,
		"created", len(res.Created),
		"duplicates", res.Duplicates,
		"errors", len(res.Errors),
	)
	return res, nil
}

// newResolver matches a reference by ID first, then by case-insensitive
// name. A name shared by several entries resolves to the first one.
func newResolver[T any](items []T, key func(T) (id, name string)) func(string) (string, bool) {
	ids := make(map[string]bool, len(items))
	names := make(map[string]string, len(items))
	for _, it := range items {
		id, name := key(it)
		ids[id] = true
		n := strings.ToLower(strings.TrimSpace(name))
		if _, taken := names[n]; !taken {
			names[n] = id
		}
	}
	return func(ref string) (string, bool) {
		if ids[ref] {
			return ref, true
		}
		id, ok := names[strings.ToLower(strings.TrimSpace(ref))]
		return id, ok
	}
}

func fingerprint(t models.Transaction) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		t.OwnerID, t.Date.Format(models.DateLayout), t.AccountID, t.CategoryID, t.Type, t.Amount.String(), t.Description)
}

// rowID hashes a row fingerprint with its occurrence index so identical rows
// in one file stay distinct.
func rowID(fp string, occurrence int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", fp, occurrence)))
	return hex.EncodeToString(hash[:])
}
