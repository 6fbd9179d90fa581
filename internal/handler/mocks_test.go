package handler

import (
	"context"
	"testing"
	"time"

	"github.com/rocjay1/rm-finance/internal/analytics"
	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/category"
	"github.com/rocjay1/rm-finance/internal/clock"
	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/importer"
	"github.com/rocjay1/rm-finance/internal/ledger"
	"github.com/rocjay1/rm-finance/internal/memstore"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadTextFunc   func(ctx context.Context, containerName, blobName, content string) error
	DownloadTextFunc func(ctx context.Context, containerName, blobName string) (string, error)
	DeleteBlobFunc   func(ctx context.Context, containerName, blobName string) error
}

func (m *MockBlobClient) UploadText(ctx context.Context, containerName, blobName, content string) error {
	if m.UploadTextFunc != nil {
		return m.UploadTextFunc(ctx, containerName, blobName, content)
	}
	return nil
}

func (m *MockBlobClient) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	if m.DownloadTextFunc != nil {
		return m.DownloadTextFunc(ctx, containerName, blobName)
	}
	return "", nil
}

func (m *MockBlobClient) DeleteBlob(ctx context.Context, containerName, blobName string) error {
	if m.DeleteBlobFunc != nil {
		return m.DeleteBlobFunc(ctx, containerName, blobName)
	}
	return nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, queueName string, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, queueName, message)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendImportErrorsFunc func(ctx context.Context, recipients []string, filename string, errors []string) error
	SendBudgetAlertsFunc func(ctx context.Context, recipients []string, views []budget.View) error
	SendOverdueGoalsFunc func(ctx context.Context, recipients []string, views []goal.View) error
}

func (m *MockEmailClient) SendImportErrors(ctx context.Context, recipients []string, filename string, errors []string) error {
	if m.SendImportErrorsFunc != nil {
		return m.SendImportErrorsFunc(ctx, recipients, filename, errors)
	}
	return nil
}

func (m *MockEmailClient) SendBudgetAlerts(ctx context.Context, recipients []string, views []budget.View) error {
	if m.SendBudgetAlertsFunc != nil {
		return m.SendBudgetAlertsFunc(ctx, recipients, views)
	}
	return nil
}

func (m *MockEmailClient) SendOverdueGoals(ctx context.Context, recipients []string, views []goal.View) error {
	if m.SendOverdueGoalsFunc != nil {
		return m.SendOverdueGoalsFunc(ctx, recipients, views)
	}
	return nil
}

const testOwner = "user-1"

var testToday = time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)

// newTestDeps wires the real services over a memstore seeded with one
// checking account ("acc-1", balance 1000) and two categories.
func newTestDeps(t *testing.T) (*Dependencies, *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	clk := clock.Fixed(testToday)

	_, err := store.CreateAccount(ctx, models.Account{
		ID: "acc-1", OwnerID: testOwner, Name: "Checking",
		Type: models.AccountChecking, Balance: decimal.NewFromInt(1000), Active: true,
	})
	require.NoError(t, err)
	require.NoError(t, store.SaveCategory(ctx, models.Category{ID: "cat-food", OwnerID: testOwner, Name: "Groceries", Type: models.CategoryExpense}))
	require.NoError(t, store.SaveCategory(ctx, models.Category{ID: "cat-pay", OwnerID: testOwner, Name: "Salary", Type: models.CategoryIncome}))

	l := ledger.New(store)
	deps := &Dependencies{
		Store:      store,
		Ledger:     l,
		Budgets:    budget.NewService(store, clk, nil),
		Goals:      goal.NewService(store, clk),
		Categories: category.NewService(store),
		Analytics:  analytics.NewService(store, clk, nil, 0),
		Importer:   importer.New(store, l, nil),
		Clock:      clk,
		Import:     ImportSettings{Container: "imports", Queue: "import-jobs"},
		Notify:     NotifySettings{OwnerID: testOwner, UserEmail: "me@example.com"},
	}
	return deps, store
}
