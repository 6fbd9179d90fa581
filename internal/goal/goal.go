// Package goal derives savings-goal progress and owns the goal state machine.
//
// A goal starts IN_PROGRESS. The only automatic edge is IN_PROGRESS to
// COMPLETED, taken when the current amount is set or raised to the target.
// Every other transition is an explicit command and any state may move to
// any other.
package goal

import (
	"time"

	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/rocjay1/rm-finance/internal/money"
	"github.com/shopspring/decimal"
)

// daysPerMonth is the divisor used to turn days remaining into months.
const daysPerMonth = 30

// Progress holds every figure computed from a goal on read.
type Progress struct {
	RemainingAmount         decimal.Decimal `json:"remaining_amount"`
	PercentageCompleted     decimal.Decimal `json:"percentage_completed"`
	DaysRemaining           int             `json:"days_remaining"`
	SuggestedMonthlySavings decimal.Decimal `json:"suggested_monthly_savings"`
	Overdue                 bool            `json:"is_overdue"`
	Completed               bool            `json:"is_completed"`
}

// Derive computes the progress of g as of today. It is pure: the same goal
// and day always give the same result.
func Derive(g models.Goal, today time.Time) Progress {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	days := models.DaysBetween(today, g.TargetDate)

	var suggested decimal.Decimal
	if days <= 0 {
		suggested = remaining
	} else {
		months := max(1, days/daysPerMonth)
		suggested = money.DivRound(remaining, decimal.NewFromInt(int64(months)), money.CurrencyPlaces)
	}

	return Progress{
		RemainingAmount:         remaining,
		PercentageCompleted:     money.Percent(g.CurrentAmount, g.TargetAmount),
		DaysRemaining:           days,
		SuggestedMonthlySavings: suggested,
		Overdue:                 models.DateOf(today).After(models.DateOf(g.TargetDate)) && g.Status == models.GoalInProgress,
		Completed:               g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) || g.Status == models.GoalCompleted,
	}
}

// SetProgress sets the current amount and applies the completion edge.
func SetProgress(g models.Goal, amount decimal.Decimal) models.Goal {
	g.CurrentAmount = amount
	return autoComplete(g)
}

// AddProgress adds amount to the current amount and applies the completion edge.
func AddProgress(g models.Goal, amount decimal.Decimal) models.Goal {
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	return autoComplete(g)
}

// Transition moves g to status unconditionally.
func Transition(g models.Goal, status models.GoalStatus) models.Goal {
	g.Status = status
	return g
}

func autoComplete(g models.Goal) models.Goal {
	if g.Status == models.GoalInProgress && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = models.GoalCompleted
	}
	return g
}

// View is a goal with its derived progress.
type View struct {
	models.Goal
	Progress
}

// NewView derives the progress of g as of today.
func NewView(g models.Goal, today time.Time) View {
	return View{Goal: g, Progress: Derive(g, today)}
}
