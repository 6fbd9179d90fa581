package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rocjay1/rm-finance/internal/analytics"
	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/category"
	"github.com/rocjay1/rm-finance/internal/config"
	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/ledger"
	"github.com/rocjay1/rm-finance/internal/memstore"
	"github.com/rocjay1/rm-finance/internal/models"
)

// Store is everything the engine persists. Both memstore.Store and
// TableStore satisfy it.
type Store interface {
	ledger.Store
	budget.Store
	goal.Store
	category.Store
	analytics.Store

	CreateAccount(ctx context.Context, a models.Account) (models.Account, error)
	ListAccountTransactions(ctx context.Context, ownerID, accountID string) ([]models.Transaction, error)
}

var (
	_ Store = (*memstore.Store)(nil)
	_ Store = (*TableStore)(nil)
)

// NewStore opens the backend cfg selects.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), nil
	case config.BackendTables:
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		s, err := NewTableStore(ctx, cfg.TableServiceURL, TableNames{
			Accounts:     cfg.AccountsTable,
			Categories:   cfg.CategoriesTable,
			Transactions: cfg.TransactionsTable,
			Budgets:      cfg.BudgetsTable,
			Goals:        cfg.GoalsTable,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
