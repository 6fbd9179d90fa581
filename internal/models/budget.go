package models

import (
	"fmt"
	"time"

	"github.com/rocjay1/rm-finance/internal/money"
	"github.com/shopspring/decimal"
)

// BudgetPeriod is a label for the budget window; the window itself is always
// StartDate..EndDate.
type BudgetPeriod string

const (
	BudgetWeekly    BudgetPeriod = "WEEKLY"
	BudgetMonthly   BudgetPeriod = "MONTHLY"
	BudgetQuarterly BudgetPeriod = "QUARTERLY"
	BudgetYearly    BudgetPeriod = "YEARLY"
	BudgetCustom    BudgetPeriod = "CUSTOM"
)

// DefaultAlertThreshold is the percentage used at which a budget raises an alert.
var DefaultAlertThreshold = decimal.NewFromInt(80)

// Budget caps spending in one category over an inclusive date window.
// Spent is a snapshot taken when the budget was last written or recomputed.
type Budget struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Spent          decimal.Decimal `json:"spent"`
	Period         BudgetPeriod    `json:"period"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	CategoryID     string          `json:"category_id"`
	Active         bool            `json:"active"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
}

// Remaining is Amount minus Spent. A negative value means the budget is overspent.
func (b *Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.Spent)
}

// PercentageUsed is Spent as a percentage of Amount, two places, 0 when Amount is 0.
func (b *Budget) PercentageUsed() decimal.Decimal {
	return money.Percent(b.Spent, b.Amount)
}

// AlertTriggered reports whether the percentage used has reached the alert threshold.
func (b *Budget) AlertTriggered() bool {
	return b.PercentageUsed().GreaterThanOrEqual(b.AlertThreshold)
}

// Covers reports whether day falls inside the budget window.
func (b *Budget) Covers(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(b.StartDate)) && !d.After(DateOf(b.EndDate))
}

// Validate checks the amount and the window.
func (b *Budget) Validate() error {
	if b.Amount.IsNegative() {
		return fmt.Errorf("%w: budget amount must not be negative", ErrInvalidAmount)
	}
	if b.CategoryID == "" {
		return fmt.Errorf("%w: category", ErrMissingField)
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidPeriod)
	}
	if b.EndDate.Before(b.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidPeriod,
			b.EndDate.Format(DateLayout), b.StartDate.Format(DateLayout))
	}
	return nil
}
