package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/rocjay1/rm-finance/internal/ledger"
	"github.com/rocjay1/rm-finance/internal/memstore"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "user-1"

func seed(t *testing.T) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	_, err := store.CreateAccount(ctx, models.Account{ID: "acc-1", OwnerID: owner, Name: "Checking", Balance: decimal.NewFromInt(100), Active: true})
	require.NoError(t, err)
	require.NoError(t, store.SaveCategory(ctx, models.Category{ID: "cat-food", OwnerID: owner, Name: "Groceries", Type: models.CategoryExpense}))
	require.NoError(t, store.SaveCategory(ctx, models.Category{ID: "cat-pay", OwnerID: owner, Name: "Salary", Type: models.CategoryIncome}))
	return store
}

func TestImport_BooksRowsThroughLedger(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	im := New(store, ledger.New(store), nil)

	content := `Date,Account,Category,Amount,Description
2026-08-17,checking,groceries,-40,Shop
2026-08-18,acc-1,Salary,250,Pay`

	res, err := im.Import(ctx, owner, content)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Created, 2)

	assert.Equal(t, "acc-1", res.Created[0].AccountID)
	assert.Equal(t, "cat-food", res.Created[0].CategoryID)
	assert.Equal(t, owner, res.Created[0].OwnerID)
	assert.NotEmpty(t, res.Created[0].ID)

	acc, err := store.GetAccount(ctx, owner, "acc-1")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(310)), "got %s", acc.Balance)
}

func TestImport_ReportsUnresolvedAndInvalidRows(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	im := New(store, ledger.New(store), nil)

	content := `Date,Account,Category,Amount
2026-08-17,Savings,Groceries,-40
2026-08-17,Checking,Travel,-40
not-a-date,Checking,Groceries,-40
2026-08-19,Checking,Groceries,-10`

	res, err := im.Import(ctx, owner, content)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], "Row 4")
	assert.Contains(t, res.Errors[1], `unknown account "Savings"`)
	assert.Contains(t, res.Errors[2], `unknown category "Travel"`)

	acc, err := store.GetAccount(ctx, owner, "acc-1")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(90)))
}

type failingStore struct{ *memstore.Store }

func (failingStore) ListCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	return nil, errors.New("table unavailable")
}

func TestImport_LookupFailure(t *testing.T) {
	store := seed(t)
	im := New(failingStore{store}, ledger.New(store), nil)

	_, err := im.Import(context.Background(), owner, "Date,Account,Category,Amount\n2026-08-17,acc-1,cat-food,5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table unavailable")
}

func TestImport_NothingParsed(t *testing.T) {
	store := seed(t)
	im := New(failingStore{store}, ledger.New(store), nil)

	res, err := im.Import(context.Background(), owner, "Date,Amount\n2026-08-17,5")
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Len(t, res.Errors, 1)
}

func TestImport_SecondRunSkipsBookedRows(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	im := New(store, ledger.New(store), nil)

	content := `Date,Account,Category,Amount,Description
2026-08-17,Checking,Groceries,-5,Coffee
2026-08-17,Checking,Groceries,-5,Coffee`

	first, err := im.Import(ctx, owner, content)
	require.NoError(t, err)
	require.Len(t, first.Created, 2, "identical rows in one file are distinct")
	assert.NotEqual(t, first.Created[0].ID, first.Created[1].ID)

	second, err := im.Import(ctx, owner, content)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, 2, second.Duplicates)

	acc, err := store.GetAccount(ctx, owner, "acc-1")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(90)))
}

// staleStore never sees booked rows, as when two imports of one file both
// pass the duplicate check before either books a row.
type staleStore struct{ *memstore.Store }

func (staleStore) GetTransaction(ctx context.Context, ownerID, id string) (models.Transaction, error) {
	return models.Transaction{}, models.ErrNotFound
}

func TestImport_InterleavedImportsBookOnce(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	im := New(staleStore{store}, ledger.New(store), nil)
	content := "Date,Account,Category,Amount\n2026-08-19,Checking,Groceries,-10"

	first, err := im.Import(ctx, owner, content)
	require.NoError(t, err)
	require.Len(t, first.Created, 1)

	second, err := im.Import(ctx, owner, content)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Empty(t, second.Errors)
	assert.Equal(t, 1, second.Duplicates)

	acc, err := store.GetAccount(ctx, owner, "acc-1")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(90)), "got %s", acc.Balance)
}
