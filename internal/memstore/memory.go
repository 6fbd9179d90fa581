// Package memstore is an in-memory store used for local development and as
// the integration fixture in tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

type key struct {
	owner string
	id    string
}

// Store keeps every entity in maps behind one lock. AdjustBalance holds the
// write lock for the whole read-modify-write, so it never reports a conflict.
// Transaction records carry a version so conditional replaces and deletes
// behave like the table store's ETag checks.
type Store struct {
	mu  sync.RWMutex
	seq uint64

	accounts     map[key]models.Account
	categories   map[key]models.Category
	transactions map[key]models.Transaction
	budgets      map[key]models.Budget
	goals        map[key]models.Goal
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts:     make(map[key]models.Account),
		categories:   make(map[key]models.Category),
		transactions: make(map[key]models.Transaction),
		budgets:      make(map[key]models.Budget),
		goals:        make(map[key]models.Goal),
	}
}

// Accounts

func (s *Store) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Currency == "" {
		a.Currency = models.DefaultCurrency
	}
	s.accounts[key{a.OwnerID, a.ID}] = a
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, ownerID, id string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[key{ownerID, id}]
	if !ok {
		return models.Account{}, fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, ownerID string) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Account
	for k, a := range s.accounts {
		if k.owner == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AdjustBalance(ctx context.Context, ownerID, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{ownerID, accountID}
	a, ok := s.accounts[k]
	if !ok {
		return decimal.Zero, fmt.Errorf("account %s: %w", accountID, models.ErrNotFound)
	}
	a.Balance = a.Balance.Add(delta)
	s.accounts[k] = a
	return a.Balance, nil
}

// Categories

func (s *Store) GetCategory(ctx context.Context, ownerID, id string) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[key{ownerID, id}]
	if !ok {
		return models.Category{}, fmt.Errorf("category %s: %w", id, models.ErrNotFound)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Category
	for k, c := range s.categories {
		if k.owner == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveCategory(ctx context.Context, c models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories[key{c.OwnerID, c.ID}] = c
	return nil
}

// Transactions

func (s *Store) GetTransaction(ctx context.Context, ownerID, id string) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[key{ownerID, id}]
	if !ok {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	return t, nil
}

// InsertTransaction stores t only when its ID is unused.
func (s *Store) InsertTransaction(ctx context.Context, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{t.OwnerID, t.ID}
	if _, ok := s.transactions[k]; ok {
		return fmt.Errorf("transaction %s: %w", t.ID, models.ErrAlreadyExists)
	}
	t.Version = s.nextVersion()
	s.transactions[k] = t
	return nil
}

// ReplaceTransaction overwrites the stored record when t.Version still
// matches it.
func (s *Store) ReplaceTransaction(ctx context.Context, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{t.OwnerID, t.ID}
	cur, ok := s.transactions[k]
	if !ok {
		return fmt.Errorf("transaction %s: %w", t.ID, models.ErrNotFound)
	}
	if cur.Version != t.Version {
		return fmt.Errorf("transaction %s: %w", t.ID, models.ErrVersionConflict)
	}
	t.Version = s.nextVersion()
	s.transactions[k] = t
	return nil
}

// DeleteTransaction removes the record. A non-empty version must match the
// stored one.
func (s *Store) DeleteTransaction(ctx context.Context, ownerID, id, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{ownerID, id}
	cur, ok := s.transactions[k]
	if !ok {
		return fmt.Errorf("transaction %s: %w", id, models.ErrNotFound)
	}
	if version != "" && cur.Version != version {
		return fmt.Errorf("transaction %s: %w", id, models.ErrVersionConflict)
	}
	delete(s.transactions, k)
	return nil
}

func (s *Store) nextVersion() string {
	s.seq++
	return strconv.FormatUint(s.seq, 10)
}

// ListTransactions returns the owner's transactions dated within [start, end],
// ordered by date then ID.
func (s *Store) ListTransactions(ctx context.Context, ownerID string, start, end time.Time) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Transaction
	for k, t := range s.transactions {
		if k.owner == ownerID && t.InRange(start, end) {
			out = append(out, t)
		}
	}
	sortTransactions(out)
	return out, nil
}

// ListAccountTransactions returns every live transaction booked on accountID.
func (s *Store) ListAccountTransactions(ctx context.Context, ownerID, accountID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Transaction
	for k, t := range s.transactions {
		if k.owner == ownerID && t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sortTransactions(out)
	return out, nil
}

// SumByCategoryAndDateRange adds the amounts of every transaction in the
// category dated within [start, end], whatever its type.
func (s *Store) SumByCategoryAndDateRange(ctx context.Context, ownerID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for k, t := range s.transactions {
		if k.owner == ownerID && t.CategoryID == categoryID && t.InRange(start, end) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func sortTransactions(ts []models.Transaction) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.Before(ts[j].Date)
		}
		return ts[i].ID < ts[j].ID
	})
}

// Budgets

func (s *Store) GetBudget(ctx context.Context, ownerID, id string) (models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[key{ownerID, id}]
	if !ok {
		return models.Budget{}, fmt.Errorf("budget %s: %w", id, models.ErrNotFound)
	}
	return b, nil
}

func (s *Store) SaveBudget(ctx context.Context, b models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.budgets[key{b.OwnerID, b.ID}] = b
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{ownerID, id}
	if _, ok := s.budgets[k]; !ok {
		return fmt.Errorf("budget %s: %w", id, models.ErrNotFound)
	}
	delete(s.budgets, k)
	return nil
}

func (s *Store) ListBudgets(ctx context.Context, ownerID string) ([]models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Budget
	for k, b := range s.budgets {
		if k.owner == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Goals

func (s *Store) GetGoal(ctx context.Context, ownerID, id string) (models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[key{ownerID, id}]
	if !ok {
		return models.Goal{}, fmt.Errorf("goal %s: %w", id, models.ErrNotFound)
	}
	return g, nil
}

func (s *Store) SaveGoal(ctx context.Context, g models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals[key{g.OwnerID, g.ID}] = g
	return nil
}

func (s *Store) ListGoals(ctx context.Context, ownerID string) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Goal
	for k, g := range s.goals {
		if k.owner == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteGoal(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{ownerID, id}
	if _, ok := s.goals[k]; !ok {
		return fmt.Errorf("goal %s: %w", id, models.ErrNotFound)
	}
	delete(s.goals, k)
	return nil
}
