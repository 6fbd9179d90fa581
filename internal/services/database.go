package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

// TableNames names the table of each entity.
type TableNames struct {
	Accounts     string
	Categories   string
	Transactions string
	Budgets      string
	Goals        string
}

// TableStore keeps every entity in Azure Table Storage, partitioned by owner
// with the entity ID as row key. Amounts are stored as decimal strings and
// dates as YYYY-MM-DD so that range filters compare lexically.
type TableStore struct {
	serviceClient *aztables.ServiceClient
	tables        TableNames
}

// NewTableStore connects to tableURL and makes sure every table exists.
func NewTableStore(ctx context.Context, tableURL string, tables TableNames) (*TableStore, error) {
	if tableURL == "" {
		return nil, fmt.Errorf("TABLE_SERVICE_URL is required")
	}

	var client *aztables.ServiceClient
	if isLocal(tableURL) {
		slog.Info("using Azurite credentials for table store")
		cred, err := aztables.NewSharedKeyCredential(azuriteCredentials())
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	s := &TableStore{serviceClient: client, tables: tables}
	if err := s.CreateTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("table store initialized",
		"table_url", tableURL,
		"accounts_table", tables.Accounts,
		"transactions_table", tables.Transactions,
	)
	return s, nil
}

// CreateTables creates any missing table.
func (s *TableStore) CreateTables(ctx context.Context) error {
	for _, name := range []string{s.tables.Accounts, s.tables.Categories, s.tables.Transactions, s.tables.Budgets, s.tables.Goals} {
		_, err := s.serviceClient.CreateTable(ctx, name, nil)
		if err != nil && errorCode(err) != "TableAlreadyExists" {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
	}
	return nil
}

func (s *TableStore) client(table string) *aztables.Client {
	return s.serviceClient.NewClient(table)
}

// Generic helpers

func (s *TableStore) get(ctx context.Context, table, ownerID, id, what string, out any) (azcore.ETag, error) {
	resp, err := s.client(table).GetEntity(ctx, ownerID, id, nil)
	if err != nil {
		return "", mapStorageError(err, what+" "+id)
	}
	if err := json.Unmarshal(resp.Value, out); err != nil {
		return "", fmt.Errorf("failed to decode %s %s: %w", what, id, err)
	}
	return resp.ETag, nil
}

func (s *TableStore) upsert(ctx context.Context, table string, entity any) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode entity: %w", err)
	}
	if _, err := s.client(table).UpsertEntity(ctx, body, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace}); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}

func (s *TableStore) remove(ctx context.Context, table, ownerID, id, what string) error {
	if _, err := s.client(table).DeleteEntity(ctx, ownerID, id, nil); err != nil {
		return mapStorageError(err, what+" "+id)
	}
	return nil
}

// list decodes every entity matching filter and passes it to each.
func list[E any](ctx context.Context, client *aztables.Client, filter string, each func(E)) error {
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list entities: %w", err)
		}
		for _, raw := range resp.Entities {
			var e E
			if err := json.Unmarshal(raw, &e); err != nil {
				slog.Warn("skipping undecodable entity", "error", err)
				continue
			}
			each(e)
		}
	}
	return nil
}

// quote escapes s for use inside an OData string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func ownerFilter(ownerID string) string {
	return "PartitionKey eq " + quote(ownerID)
}

func dateRangeFilter(ownerID string, start, end time.Time) string {
	return fmt.Sprintf("%s and Date ge %s and Date le %s", ownerFilter(ownerID),
		quote(formatDate(start)), quote(formatDate(end)))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}

func parseDate(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Accounts

type accountEntity struct {
	PartitionKey string
	RowKey       string
	Name         string
	Description  string
	Type         string
	Balance      string
	Currency     string
	Active       bool
}

func toAccountEntity(a models.Account) accountEntity {
	return accountEntity{
		PartitionKey: a.OwnerID,
		RowKey:       a.ID,
		Name:         a.Name,
		Description:  a.Description,
		Type:         string(a.Type),
		Balance:      a.Balance.String(),
		Currency:     a.Currency,
		Active:       a.Active,
	}
}

func (e accountEntity) model() models.Account {
	return models.Account{
		ID:          e.RowKey,
		OwnerID:     e.PartitionKey,
		Name:        e.Name,
		Description: e.Description,
		Type:        models.AccountType(e.Type),
		Balance:     parseDecimal(e.Balance),
		Currency:    e.Currency,
		Active:      e.Active,
	}
}

func (s *TableStore) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Currency == "" {
		a.Currency = models.DefaultCurrency
	}
	body, err := json.Marshal(toAccountEntity(a))
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to encode account: %w", err)
	}
	if _, err := s.client(s.tables.Accounts).AddEntity(ctx, body, nil); err != nil {
		return models.Account{}, fmt.Errorf("failed to add account %s: %w", a.ID, err)
	}
	return a, nil
}

func (s *TableStore) GetAccount(ctx context.Context, ownerID, id string) (models.Account, error) {
	var e accountEntity
	if _, err := s.get(ctx, s.tables.Accounts, ownerID, id, "account", &e); err != nil {
		return models.Account{}, err
	}
	return e.model(), nil
}

func (s *TableStore) ListAccounts(ctx context.Context, ownerID string) ([]models.Account, error) {
	var out []models.Account
	err := list(ctx, s.client(s.tables.Accounts), ownerFilter(ownerID), func(e accountEntity) {
		out = append(out, e.model())
	})
	return out, err
}

// AdjustBalance adds delta to the stored balance with a conditional replace.
// A concurrent writer makes the replace fail with 412, reported as
// models.ErrVersionConflict for the caller to retry.
func (s *TableStore) AdjustBalance(ctx context.Context, ownerID, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var e accountEntity
	etag, err := s.get(ctx, s.tables.Accounts, ownerID, accountID, "account", &e)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := nextBalance(accountID, e.Balance, delta)
	if err != nil {
		return decimal.Zero, err
	}
	e.Balance = balance.String()

	body, err := json.Marshal(e)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to encode account: %w", err)
	}
	_, err = s.client(s.tables.Accounts).UpdateEntity(ctx, body, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		return decimal.Zero, mapStorageError(err, "account "+accountID)
	}
	return balance, nil
}

// nextBalance adds delta to a stored balance. An unreadable balance is an
// error here rather than zero, so a corrupt row is never overwritten.
func nextBalance(accountID, stored string, delta decimal.Decimal) (decimal.Decimal, error) {
	current, err := decimal.NewFromString(stored)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode balance of account %s: %w", accountID, err)
	}
	return current.Add(delta), nil
}

// Categories

type categoryEntity struct {
	PartitionKey string
	RowKey       string
	Name         string
	Description  string
	Type         string
	ParentID     string
	Icon         string
	Color        string
}

func (e categoryEntity) model() models.Category {
	return models.Category{
		ID:          e.RowKey,
		OwnerID:     e.PartitionKey,
		Name:        e.Name,
		Description: e.Description,
		Type:        models.CategoryType(e.Type),
		ParentID:    e.ParentID,
		Icon:        e.Icon,
		Color:       e.Color,
	}
}

func (s *TableStore) GetCategory(ctx context.Context, ownerID, id string) (models.Category, error) {
	var e categoryEntity
	if _, err := s.get(ctx, s.tables.Categories, ownerID, id, "category", &e); err != nil {
		return models.Category{}, err
	}
	return e.model(), nil
}

func (s *TableStore) ListCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	var out []models.Category
	err := list(ctx, s.client(s.tables.Categories), ownerFilter(ownerID), func(e categoryEntity) {
		out = append(out, e.model())
	})
	return out, err
}

func (s *TableStore) SaveCategory(ctx context.Context, c models.Category) error {
	return s.upsert(ctx, s.tables.Categories, categoryEntity{
		PartitionKey: c.OwnerID,
		RowKey:       c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Type:         string(c.Type),
		ParentID:     c.ParentID,
		Icon:         c.Icon,
		Color:        c.Color,
	})
}

// Transactions

type transactionEntity struct {
	PartitionKey      string
	RowKey            string
	AccountID         string
	TransferAccountID string
	CategoryID        string
	Amount            string
	Type              string
	Date              string
	Description       string
	Payee             string
	Reference         string
	Notes             string
	Reconciled        bool
}

func toTransactionEntity(t models.Transaction) transactionEntity {
	return transactionEntity{
		PartitionKey:      t.OwnerID,
		RowKey:            t.ID,
		AccountID:         t.AccountID,
		TransferAccountID: t.TransferAccountID,
		CategoryID:        t.CategoryID,
		Amount:            t.Amount.String(),
		Type:              string(t.Type),
		Date:              formatDate(t.Date),
		Description:       t.Description,
		Payee:             t.Payee,
		Reference:         t.Reference,
		Notes:             t.Notes,
		Reconciled:        t.Reconciled,
	}
}

func (e transactionEntity) model() models.Transaction {
	return models.Transaction{
		ID:                e.RowKey,
		OwnerID:           e.PartitionKey,
		AccountID:         e.AccountID,
		TransferAccountID: e.TransferAccountID,
		CategoryID:        e.CategoryID,
		Amount:            parseDecimal(e.Amount),
		Type:              models.TransactionType(e.Type),
		Date:              parseDate(e.Date),
		Description:       e.Description,
		Payee:             e.Payee,
		Reference:         e.Reference,
		Notes:             e.Notes,
		Reconciled:        e.Reconciled,
	}
}

func (s *TableStore) GetTransaction(ctx context.Context, ownerID, id string) (models.Transaction, error) {
	var e transactionEntity
	etag, err := s.get(ctx, s.tables.Transactions, ownerID, id, "transaction", &e)
	if err != nil {
		return models.Transaction{}, err
	}
	t := e.model()
	t.Version = string(etag)
	return t, nil
}

// InsertTransaction adds t; an existing row key fails with 409, reported as
// models.ErrAlreadyExists.
func (s *TableStore) InsertTransaction(ctx context.Context, t models.Transaction) error {
	body, err := json.Marshal(toTransactionEntity(t))
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}
	if _, err := s.client(s.tables.Transactions).AddEntity(ctx, body, nil); err != nil {
		return mapStorageError(err, "transaction "+t.ID)
	}
	return nil
}

// ReplaceTransaction overwrites the row only while its ETag equals
// t.Version.
func (s *TableStore) ReplaceTransaction(ctx context.Context, t models.Transaction) error {
	body, err := json.Marshal(toTransactionEntity(t))
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}
	_, err = s.client(s.tables.Transactions).UpdateEntity(ctx, body, &aztables.UpdateEntityOptions{
		IfMatch:    ifMatch(t.Version),
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		return mapStorageError(err, "transaction "+t.ID)
	}
	return nil
}

// DeleteTransaction removes the row; a non-empty version must still match
// its ETag.
func (s *TableStore) DeleteTransaction(ctx context.Context, ownerID, id, version string) error {
	var opts *aztables.DeleteEntityOptions
	if version != "" {
		opts = &aztables.DeleteEntityOptions{IfMatch: ifMatch(version)}
	}
	if _, err := s.client(s.tables.Transactions).DeleteEntity(ctx, ownerID, id, opts); err != nil {
		return mapStorageError(err, "transaction "+id)
	}
	return nil
}

// ifMatch turns a version into an If-Match condition. An empty version
// matches any ETag but still requires the row to exist.
func ifMatch(version string) *azcore.ETag {
	if version == "" {
		return to.Ptr(azcore.ETagAny)
	}
	return to.Ptr(azcore.ETag(version))
}

// ListTransactions returns the owner's transactions dated within
// [start, end], ordered by date then ID.
func (s *TableStore) ListTransactions(ctx context.Context, ownerID string, start, end time.Time) ([]models.Transaction, error) {
	return s.listTransactions(ctx, dateRangeFilter(ownerID, start, end))
}

func (s *TableStore) ListAccountTransactions(ctx context.Context, ownerID, accountID string) ([]models.Transaction, error) {
	return s.listTransactions(ctx, ownerFilter(ownerID)+" and AccountID eq "+quote(accountID))
}

// SumByCategoryAndDateRange adds the amounts of every transaction in the
// category dated within [start, end], whatever its type.
func (s *TableStore) SumByCategoryAndDateRange(ctx context.Context, ownerID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	filter := dateRangeFilter(ownerID, start, end) + " and CategoryID eq " + quote(categoryID)
	err := list(ctx, s.client(s.tables.Transactions), filter, func(e transactionEntity) {
		total = total.Add(parseDecimal(e.Amount))
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (s *TableStore) listTransactions(ctx context.Context, filter string) ([]models.Transaction, error) {
	var out []models.Transaction
	err := list(ctx, s.client(s.tables.Transactions), filter, func(e transactionEntity) {
		out = append(out, e.model())
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Budgets

type budgetEntity struct {
	PartitionKey   string
	RowKey         string
	Name           string
	Description    string
	Amount         string
	Spent          string
	Period         string
	StartDate      string
	EndDate        string
	CategoryID     string
	Active         bool
	AlertThreshold string
}

func (e budgetEntity) model() models.Budget {
	return models.Budget{
		ID:             e.RowKey,
		OwnerID:        e.PartitionKey,
		Name:           e.Name,
		Description:    e.Description,
		Amount:         parseDecimal(e.Amount),
		Spent:          parseDecimal(e.Spent),
		Period:         models.BudgetPeriod(e.Period),
		StartDate:      parseDate(e.StartDate),
		EndDate:        parseDate(e.EndDate),
		CategoryID:     e.CategoryID,
		Active:         e.Active,
		AlertThreshold: parseDecimal(e.AlertThreshold),
	}
}

func (s *TableStore) GetBudget(ctx context.Context, ownerID, id string) (models.Budget, error) {
	var e budgetEntity
	if _, err := s.get(ctx, s.tables.Budgets, ownerID, id, "budget", &e); err != nil {
		return models.Budget{}, err
	}
	return e.model(), nil
}

func (s *TableStore) SaveBudget(ctx context.Context, b models.Budget) error {
	return s.upsert(ctx, s.tables.Budgets, budgetEntity{
		PartitionKey:   b.OwnerID,
		RowKey:         b.ID,
		Name:           b.Name,
		Description:    b.Description,
		Amount:         b.Amount.String(),
		Spent:          b.Spent.String(),
		Period:         string(b.Period),
		StartDate:      formatDate(b.StartDate),
		EndDate:        formatDate(b.EndDate),
		CategoryID:     b.CategoryID,
		Active:         b.Active,
		AlertThreshold: b.AlertThreshold.String(),
	})
}

func (s *TableStore) DeleteBudget(ctx context.Context, ownerID, id string) error {
	return s.remove(ctx, s.tables.Budgets, ownerID, id, "budget")
}

func (s *TableStore) ListBudgets(ctx context.Context, ownerID string) ([]models.Budget, error) {
	var out []models.Budget
	err := list(ctx, s.client(s.tables.Budgets), ownerFilter(ownerID), func(e budgetEntity) {
		out = append(out, e.model())
	})
	return out, err
}

// Goals

type goalEntity struct {
	PartitionKey  string
	RowKey        string
	Name          string
	Description   string
	TargetAmount  string
	CurrentAmount string
	TargetDate    string
	Status        string
	Priority      string
	AccountID     string
	Icon          string
	Color         string
}

func (e goalEntity) model() models.Goal {
	return models.Goal{
		ID:            e.RowKey,
		OwnerID:       e.PartitionKey,
		Name:          e.Name,
		Description:   e.Description,
		TargetAmount:  parseDecimal(e.TargetAmount),
		CurrentAmount: parseDecimal(e.CurrentAmount),
		TargetDate:    parseDate(e.TargetDate),
		Status:        models.GoalStatus(e.Status),
		Priority:      models.GoalPriority(e.Priority),
		AccountID:     e.AccountID,
		Icon:          e.Icon,
		Color:         e.Color,
	}
}

func (s *TableStore) GetGoal(ctx context.Context, ownerID, id string) (models.Goal, error) {
	var e goalEntity
	if _, err := s.get(ctx, s.tables.Goals, ownerID, id, "goal", &e); err != nil {
		return models.Goal{}, err
	}
	return e.model(), nil
}

func (s *TableStore) SaveGoal(ctx context.Context, g models.Goal) error {
	return s.upsert(ctx, s.tables.Goals, goalEntity{
		PartitionKey:  g.OwnerID,
		RowKey:        g.ID,
		Name:          g.Name,
		Description:   g.Description,
		TargetAmount:  g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(),
		TargetDate:    formatDate(g.TargetDate),
		Status:        string(g.Status),
		Priority:      string(g.Priority),
		AccountID:     g.AccountID,
		Icon:          g.Icon,
		Color:         g.Color,
	})
}

func (s *TableStore) DeleteGoal(ctx context.Context, ownerID, id string) error {
	return s.remove(ctx, s.tables.Goals, ownerID, id, "goal")
}

func (s *TableStore) ListGoals(ctx context.Context, ownerID string) ([]models.Goal, error) {
	var out []models.Goal
	err := list(ctx, s.client(s.tables.Goals), ownerFilter(ownerID), func(e goalEntity) {
		out = append(out, e.model())
	})
	return out, err
}
