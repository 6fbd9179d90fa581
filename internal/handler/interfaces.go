package handler

import (
	"context"
	"time"

	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/models"
)

// DataStore is the read side and account bootstrap the handlers use
// directly. Every balance-affecting write goes through the ledger instead.
type DataStore interface {
	CreateAccount(ctx context.Context, a models.Account) (models.Account, error)
	GetAccount(ctx context.Context, ownerID, id string) (models.Account, error)
	ListAccounts(ctx context.Context, ownerID string) ([]models.Account, error)
	ListCategories(ctx context.Context, ownerID string) ([]models.Category, error)
	GetTransaction(ctx context.Context, ownerID, id string) (models.Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, start, end time.Time) ([]models.Transaction, error)
	ListAccountTransactions(ctx context.Context, ownerID, accountID string) ([]models.Transaction, error)
}

// BlobClient stages import files.
type BlobClient interface {
	UploadText(ctx context.Context, containerName, blobName, content string) error
	DownloadText(ctx context.Context, containerName, blobName string) (string, error)
	DeleteBlob(ctx context.Context, containerName, blobName string) error
}

// QueueClient posts import jobs.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, queueName string, message any) error
}

// EmailClient sends the notification mails.
type EmailClient interface {
	SendImportErrors(ctx context.Context, recipients []string, filename string, errors []string) error
	SendBudgetAlerts(ctx context.Context, recipients []string, views []budget.View) error
	SendOverdueGoals(ctx context.Context, recipients []string, views []goal.View) error
}
