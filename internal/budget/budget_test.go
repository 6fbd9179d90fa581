package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rocjay1/rm-finance/internal/clock"
	"github.com/rocjay1/rm-finance/internal/memstore"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "user-1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func tx(id, category, amount string, date time.Time) models.Transaction {
	return models.Transaction{
		ID:         id,
		OwnerID:    owner,
		AccountID:  "acc",
		CategoryID: category,
		Amount:     dec(amount),
		Type:       models.TransactionExpense,
		Date:       date,
	}
}

func TestSpentIn(t *testing.T) {
	start, end := day(2026, 10, 1), day(2026, 10, 31)
	txns := []models.Transaction{
		tx("1", "X", "40.00", day(2026, 10, 3)),
		tx("2", "X", "10.00", day(2026, 10, 31)),
		tx("3", "Y", "5.00", day(2026, 10, 10)),
		tx("4", "X", "99.00", day(2026, 11, 1)),
		tx("5", "X", "99.00", day(2026, 9, 30)),
	}
	assert.True(t, SpentIn(txns, "X", start, end).Equal(dec("50.00")))
	assert.True(t, SpentIn(nil, "X", start, end).IsZero())
}

func TestRecomputeSpent_IgnoresType(t *testing.T) {
	income := tx("1", "X", "20.00", day(2026, 10, 5))
	income.Type = models.TransactionIncome
	b := models.Budget{CategoryID: "X", StartDate: day(2026, 10, 1), EndDate: day(2026, 10, 31)}

	got := RecomputeSpent(b, []models.Transaction{income, tx("2", "X", "5.00", day(2026, 10, 6))})
	assert.True(t, got.Spent.Equal(dec("25.00")))
}

func TestNewView(t *testing.T) {
	v := NewView(models.Budget{
		Amount:         dec("100.00"),
		Spent:          dec("120.00"),
		AlertThreshold: models.DefaultAlertThreshold,
	})
	assert.True(t, v.Remaining.Equal(dec("-20.00")))
	assert.True(t, v.PercentageUsed.Equal(dec("120.00")))
	assert.True(t, v.AlertTriggered)

	zero := NewView(models.Budget{Amount: decimal.Zero, Spent: dec("10"), AlertThreshold: models.DefaultAlertThreshold})
	assert.True(t, zero.PercentageUsed.IsZero())
}

func newFixture(t *testing.T) (*memstore.Store, *Service) {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.SaveCategory(ctx, models.Category{ID: "X", OwnerID: owner, Type: models.CategoryExpense}))
	require.NoError(t, s.SaveCategory(ctx, models.Category{ID: "Y", OwnerID: owner, Type: models.CategoryExpense}))
	for _, tr := range []models.Transaction{
		tx("1", "X", "40.00", day(2026, 10, 3)),
		tx("2", "X", "10.00", day(2026, 10, 20)),
		tx("3", "Y", "5.00", day(2026, 10, 10)),
	} {
		require.NoError(t, s.InsertTransaction(ctx, tr))
	}
	return s, NewService(s, clock.Fixed(day(2026, 10, 15)), nil)
}

func TestService_Create(t *testing.T) {
	_, svc := newFixture(t)

	b, err := svc.Create(context.Background(), models.Budget{
		OwnerID:    owner,
		Name:       "Groceries",
		Amount:     dec("200.00"),
		CategoryID: "X",
		Period:     models.BudgetMonthly,
		StartDate:  day(2026, 10, 1),
		EndDate:    day(2026, 10, 31),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.True(t, b.Active)
	assert.True(t, b.Spent.Equal(dec("50.00")))
	assert.True(t, b.AlertThreshold.Equal(models.DefaultAlertThreshold))
}

func TestService_CreateValidation(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Budget{
		OwnerID: owner, Amount: dec("1"), CategoryID: "nope",
		StartDate: day(2026, 10, 1), EndDate: day(2026, 10, 31),
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Create(ctx, models.Budget{
		OwnerID: owner, Amount: dec("1"), CategoryID: "X",
		StartDate: day(2026, 10, 31), EndDate: day(2026, 10, 1),
	})
	assert.ErrorIs(t, err, models.ErrInvalidPeriod)
}

func TestService_SnapshotIsStaleUntilRecomputed(t *testing.T) {
	s, svc := newFixture(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, models.Budget{
		OwnerID: owner, Amount: dec("100.00"), CategoryID: "X",
		StartDate: day(2026, 10, 1), EndDate: day(2026, 10, 31),
	})
	require.NoError(t, err)

	require.NoError(t, s.InsertTransaction(ctx, tx("4", "X", "25.00", day(2026, 10, 12))))

	stored, err := s.GetBudget(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Spent.Equal(dec("50.00")), "snapshot is not live")

	fresh, err := svc.Recompute(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Spent.Equal(dec("75.00")))
}

func TestService_UpdateKeepsActiveFlag(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, models.Budget{
		OwnerID: owner, Amount: dec("100.00"), CategoryID: "X",
		StartDate: day(2026, 10, 1), EndDate: day(2026, 10, 31),
	})
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, owner, b.ID)
	require.NoError(t, err)

	b.CategoryID = "Y"
	b.Active = true
	updated, err := svc.Update(ctx, b)
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.True(t, updated.Spent.Equal(dec("5.00")))

	_, err = svc.Update(ctx, models.Budget{ID: "missing", OwnerID: owner})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestService_CurrentAndAlerts(t *testing.T) {
	_, svc := newFixture(t)
	ctx := context.Background()

	current, err := svc.Create(ctx, models.Budget{
		OwnerID: owner, Amount: dec("60.00"), CategoryID: "X",
		StartDate: day(2026, 10, 1), EndDate: day(2026, 10, 31),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.Budget{
		OwnerID: owner, Amount: dec("60.00"), CategoryID: "X",
		StartDate: day(2026, 9, 1), EndDate: day(2026, 9, 30),
	})
	require.NoError(t, err)
	quiet, err := svc.Create(ctx, models.Budget{
		OwnerID: owner, Amount: dec("100.00"), CategoryID: "Y",
		StartDate: day(2026, 10, 1), EndDate: day(2026, 10, 31),
	})
	require.NoError(t, err)

	list, err := svc.Current(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	alerts, err := svc.Alerts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, current.ID, alerts[0].ID)
	assert.True(t, alerts[0].PercentageUsed.Equal(dec("83.33")))

	_, err = svc.Toggle(ctx, owner, quiet.ID)
	require.NoError(t, err)
	list, err = svc.Current(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type failingStore struct {
	*memstore.Store
}

func (f failingStore) SumByCategoryAndDateRange(ctx context.Context, ownerID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("query failed")
}

func TestService_RecomputeSurfacesStoreErrors(t *testing.T) {
	s, _ := newFixture(t)
	require.NoError(t, s.SaveBudget(context.Background(), models.Budget{ID: "b1", OwnerID: owner, CategoryID: "X"}))

	svc := NewService(failingStore{s}, clock.System{}, nil)
	_, err := svc.Recompute(context.Background(), owner, "b1")
	assert.ErrorContains(t, err, "query failed")
}
