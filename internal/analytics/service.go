package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rocjay1/rm-finance/internal/clock"
	"github.com/rocjay1/rm-finance/internal/metrics"
	"github.com/rocjay1/rm-finance/internal/models"
	"golang.org/x/sync/errgroup"
)

// Store is the query contract the dashboard reads through.
type Store interface {
	ListAccounts(ctx context.Context, ownerID string) ([]models.Account, error)
	ListCategories(ctx context.Context, ownerID string) ([]models.Category, error)
	ListTransactions(ctx context.Context, ownerID string, start, end time.Time) ([]models.Transaction, error)
}

// Service loads what the aggregations need and runs them.
type Service struct {
	store      Store
	clock      clock.Clock
	metrics    *metrics.Metrics
	categories *cache.Cache
}

// NewService creates a dashboard service. Category lookups are cached per
// owner for categoryTTL; a zero TTL disables the cache.
func NewService(store Store, clk clock.Clock, m *metrics.Metrics, categoryTTL time.Duration) *Service {
	s := &Service{store: store, clock: clk, metrics: m}
	if categoryTTL > 0 {
		s.categories = cache.New(categoryTTL, 2*categoryTTL)
	}
	return s
}

// InvalidateCategories drops the cached categories of ownerID.
func (s *Service) InvalidateCategories(ownerID string) {
	if s.categories != nil {
		s.categories.Delete(ownerID)
	}
}

// Summary builds the dashboard of ownerID for period. Accounts, categories
// and transactions are loaded concurrently.
func (s *Service) Summary(ctx context.Context, ownerID string, period Period) (Summary, error) {
	started := time.Now()
	today := clock.Today(s.clock)
	window := SummaryWindow(period, today)

	var (
		accounts     []models.Account
		categories   map[string]models.Category
		transactions []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.store.ListAccounts(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.categoryIndex(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, ownerID, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summarize(transactions, accounts, categories, period, today)
	s.metrics.ObserveSummary(time.Since(started).Seconds())

	slog.Info("dashboard summary built",
		"owner_id", ownerID,
		"start", period.Start.Format(models.DateLayout),
		"end", period.End.Format(models.DateLayout),
		"transactions", summary.TransactionCount,
	)
	return summary, nil
}

// CategoryStatistics is the per-category breakdown of ownerID's
// transactions in period, optionally restricted to one type.
func (s *Service) CategoryStatistics(ctx context.Context, ownerID string, period Period, typ models.TransactionType) ([]CategoryStat, error) {
	var (
		categories   map[string]models.Category
		transactions []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.categoryIndex(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, ownerID, period.Start, period.End)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return CategoryStatistics(transactions, categories, period, typ), nil
}

// Trends returns the monthsBack-month trend series ending this month.
func (s *Service) Trends(ctx context.Context, ownerID string, monthsBack int) ([]MonthlyTrend, error) {
	today := clock.Today(s.clock)
	if monthsBack <= 0 {
		return Trends(nil, today, monthsBack), nil
	}
	window := TrendWindow(today, monthsBack)
	transactions, err := s.store.ListTransactions(ctx, ownerID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return Trends(transactions, today, monthsBack), nil
}

// Compare contrasts period with the period before it.
func (s *Service) Compare(ctx context.Context, ownerID string, period Period) (Comparison, error) {
	window := period.Union(period.Previous())
	transactions, err := s.store.ListTransactions(ctx, ownerID, window.Start, window.End)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	return Compare(transactions, period), nil
}

func (s *Service) categoryIndex(ctx context.Context, ownerID string) (map[string]models.Category, error) {
	if s.categories != nil {
		if v, ok := s.categories.Get(ownerID); ok {
			return v.(map[string]models.Category), nil
		}
	}
	all, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	idx := IndexCategories(all)
	if s.categories != nil {
		s.categories.SetDefault(ownerID, idx)
	}
	return idx, nil
}
