package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the state of a savings goal.
type GoalStatus string

const (
	GoalInProgress GoalStatus = "IN_PROGRESS"
	GoalCompleted  GoalStatus = "COMPLETED"
	GoalAbandoned  GoalStatus = "ABANDONED"
	GoalPaused     GoalStatus = "PAUSED"
)

// Valid reports whether s is a known goal status.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalInProgress, GoalCompleted, GoalAbandoned, GoalPaused:
		return true
	}
	return false
}

// GoalPriority orders goals when listing active ones.
type GoalPriority string

const (
	PriorityLow      GoalPriority = "LOW"
	PriorityMedium   GoalPriority = "MEDIUM"
	PriorityHigh     GoalPriority = "HIGH"
	PriorityCritical GoalPriority = "CRITICAL"
)

// Rank returns a sort key where more urgent priorities sort first.
func (p GoalPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Goal is a savings target. CurrentAmount is maintained by hand, not derived
// from transactions; every progress figure is computed on read.
type Goal struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetDate    time.Time       `json:"target_date"`
	Status        GoalStatus      `json:"status"`
	Priority      GoalPriority    `json:"priority"`
	AccountID     string          `json:"account_id,omitempty"`
	Icon          string          `json:"icon,omitempty"`
	Color         string          `json:"color,omitempty"`
}
