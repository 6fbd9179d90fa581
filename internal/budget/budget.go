// Package budget computes the spent snapshot of a budget and owns the budget
// write path. The snapshot is only refreshed when a budget is written or
// explicitly recomputed; between those points reads may be stale.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/rm-finance/internal/clock"
	"github.com/rocjay1/rm-finance/internal/metrics"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

// SpentIn sums the amounts of transactions in categoryID dated within
// [start, end]. Transaction type is not considered.
func SpentIn(transactions []models.Transaction, categoryID string, start, end time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.CategoryID == categoryID && t.InRange(start, end) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// RecomputeSpent returns b with Spent set from transactions.
func RecomputeSpent(b models.Budget, transactions []models.Transaction) models.Budget {
	b.Spent = SpentIn(transactions, b.CategoryID, b.StartDate, b.EndDate)
	return b
}

// View is a budget together with its derived figures.
type View struct {
	models.Budget
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	AlertTriggered bool            `json:"alert_triggered"`
}

// NewView derives the read-only figures of b.
func NewView(b models.Budget) View {
	return View{
		Budget:         b,
		Remaining:      b.Remaining(),
		PercentageUsed: b.PercentageUsed(),
		AlertTriggered: b.AlertTriggered(),
	}
}

// Store is the persistence the budget service needs.
type Store interface {
	GetCategory(ctx context.Context, ownerID, id string) (models.Category, error)
	SumByCategoryAndDateRange(ctx context.Context, ownerID, categoryID string, start, end time.Time) (decimal.Decimal, error)
	GetBudget(ctx context.Context, ownerID, id string) (models.Budget, error)
	SaveBudget(ctx context.Context, b models.Budget) error
	DeleteBudget(ctx context.Context, ownerID, id string) error
	ListBudgets(ctx context.Context, ownerID string) ([]models.Budget, error)
}

// Service writes budgets and keeps their spent snapshot current at write time.
type Service struct {
	store   Store
	clock   clock.Clock
	metrics *metrics.Metrics
}

// NewService creates a budget service.
func NewService(store Store, clk clock.Clock, m *metrics.Metrics) *Service {
	return &Service{store: store, clock: clk, metrics: m}
}

// Create validates b, fills defaults, computes spent and saves it.
func (s *Service) Create(ctx context.Context, b models.Budget) (models.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Active = true
	return s.write(ctx, b)
}

// Update replaces an existing budget and recomputes its spent total.
func (s *Service) Update(ctx context.Context, b models.Budget) (models.Budget, error) {
	existing, err := s.store.GetBudget(ctx, b.OwnerID, b.ID)
	if err != nil {
		return models.Budget{}, err
	}
	b.Active = existing.Active
	return s.write(ctx, b)
}

// Recompute refreshes the spent snapshot of a stored budget.
func (s *Service) Recompute(ctx context.Context, ownerID, id string) (models.Budget, error) {
	b, err := s.store.GetBudget(ctx, ownerID, id)
	if err != nil {
		return models.Budget{}, err
	}
	return s.refresh(ctx, b)
}

// Toggle flips the active flag of a budget.
func (s *Service) Toggle(ctx context.Context, ownerID, id string) (models.Budget, error) {
	b, err := s.store.GetBudget(ctx, ownerID, id)
	if err != nil {
		return models.Budget{}, err
	}
	b.Active = !b.Active
	if err := s.store.SaveBudget(ctx, b); err != nil {
		return models.Budget{}, fmt.Errorf("failed to save budget: %w", err)
	}
	slog.Info("budget toggled", "budget_id", id, "active", b.Active)
	return b, nil
}

// Delete removes a budget.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteBudget(ctx, ownerID, id)
}

// List returns every budget of the owner.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.Budget, error) {
	return s.store.ListBudgets(ctx, ownerID)
}

// Current returns the owner's active budgets whose window contains today.
func (s *Service) Current(ctx context.Context, ownerID string) ([]models.Budget, error) {
	all, err := s.store.ListBudgets(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	today := clock.Today(s.clock)
	var out []models.Budget
	for _, b := range all {
		if b.Active && b.Covers(today) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Alerts recomputes every current budget and returns those at or over
// their alert threshold.
func (s *Service) Alerts(ctx context.Context, ownerID string) ([]View, error) {
	current, err := s.Current(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []View
	for _, b := range current {
		fresh, err := s.refresh(ctx, b)
		if err != nil {
			return nil, err
		}
		if v := NewView(fresh); v.AlertTriggered {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service) write(ctx context.Context, b models.Budget) (models.Budget, error) {
	if err := b.Validate(); err != nil {
		return models.Budget{}, err
	}
	if _, err := s.store.GetCategory(ctx, b.OwnerID, b.CategoryID); err != nil {
		return models.Budget{}, err
	}
	if b.AlertThreshold.IsZero() {
		b.AlertThreshold = models.DefaultAlertThreshold
	}
	if b.Period == "" {
		b.Period = models.BudgetCustom
	}
	return s.refresh(ctx, b)
}

func (s *Service) refresh(ctx context.Context, b models.Budget) (models.Budget, error) {
	spent, err := s.store.SumByCategoryAndDateRange(ctx, b.OwnerID, b.CategoryID, b.StartDate, b.EndDate)
	if err != nil {
		return models.Budget{}, fmt.Errorf("failed to sum spending for budget %s: %w", b.ID, err)
	}
	b.Spent = spent
	if err := s.store.SaveBudget(ctx, b); err != nil {
		return models.Budget{}, fmt.Errorf("failed to save budget: %w", err)
	}
	s.metrics.BudgetRecomputed()

	slog.Info("budget spent recomputed",
		"budget_id", b.ID,
		"category_id", b.CategoryID,
		"spent", b.Spent.String(),
		"amount", b.Amount.String(),
	)
	return b, nil
}
