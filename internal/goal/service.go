package goal

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/rocjay1/rm-finance/internal/clock"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
)

// Store is the persistence the goal service needs.
type Store interface {
	GetAccount(ctx context.Context, ownerID, id string) (models.Account, error)
	GetGoal(ctx context.Context, ownerID, id string) (models.Goal, error)
	SaveGoal(ctx context.Context, g models.Goal) error
	DeleteGoal(ctx context.Context, ownerID, id string) error
	ListGoals(ctx context.Context, ownerID string) ([]models.Goal, error)
}

// Service is the goal write path.
type Service struct {
	store Store
	clock clock.Clock
}

// NewService creates a goal service.
func NewService(store Store, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk}
}

// Create stores a new goal. Status always starts IN_PROGRESS; priority
// defaults to MEDIUM and the current amount to zero.
func (s *Service) Create(ctx context.Context, g models.Goal) (View, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.Status = models.GoalInProgress
	if g.Priority == "" {
		g.Priority = models.PriorityMedium
	}
	if err := s.validate(ctx, g); err != nil {
		return View{}, err
	}
	return s.save(ctx, g)
}

// Get returns the goal with its progress as of today.
func (s *Service) Get(ctx context.Context, ownerID, id string) (View, error) {
	g, err := s.store.GetGoal(ctx, ownerID, id)
	if err != nil {
		return View{}, err
	}
	return NewView(g, clock.Today(s.clock)), nil
}

// Update replaces the descriptive fields, target and priority of a goal.
// The current amount and status are left alone; retargeting below the
// current amount completes an IN_PROGRESS goal.
func (s *Service) Update(ctx context.Context, g models.Goal) (View, error) {
	existing, err := s.store.GetGoal(ctx, g.OwnerID, g.ID)
	if err != nil {
		return View{}, err
	}
	existing.Name = g.Name
	existing.Description = g.Description
	existing.TargetAmount = g.TargetAmount
	existing.TargetDate = g.TargetDate
	existing.AccountID = g.AccountID
	existing.Icon = g.Icon
	existing.Color = g.Color
	if g.Priority != "" {
		existing.Priority = g.Priority
	}
	if err := s.validate(ctx, existing); err != nil {
		return View{}, err
	}
	return s.save(ctx, autoComplete(existing))
}

// SetProgress sets the current amount of a goal.
func (s *Service) SetProgress(ctx context.Context, ownerID, id string, amount decimal.Decimal) (View, error) {
	return s.mutate(ctx, ownerID, id, func(g models.Goal) (models.Goal, error) {
		if amount.IsNegative() {
			return g, fmt.Errorf("%w: progress must not be negative", models.ErrInvalidAmount)
		}
		return SetProgress(g, amount), nil
	})
}

// AddProgress adds a contribution to the current amount of a goal.
func (s *Service) AddProgress(ctx context.Context, ownerID, id string, amount decimal.Decimal) (View, error) {
	return s.mutate(ctx, ownerID, id, func(g models.Goal) (models.Goal, error) {
		return AddProgress(g, amount), nil
	})
}

// UpdateStatus moves a goal to any status.
func (s *Service) UpdateStatus(ctx context.Context, ownerID, id string, status models.GoalStatus) (View, error) {
	return s.mutate(ctx, ownerID, id, func(g models.Goal) (models.Goal, error) {
		if !status.Valid() {
			return g, fmt.Errorf("%w: goal status %q", models.ErrInvalidType, status)
		}
		return Transition(g, status), nil
	})
}

// Delete removes a goal.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.store.GetGoal(ctx, ownerID, id); err != nil {
		return err
	}
	return s.store.DeleteGoal(ctx, ownerID, id)
}

// List returns every goal of the owner ordered by target date.
func (s *Service) List(ctx context.Context, ownerID string) ([]View, error) {
	goals, err := s.store.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].TargetDate.Before(goals[j].TargetDate) })
	return s.views(goals), nil
}

// Active returns IN_PROGRESS goals, most urgent priority first, then by target date.
func (s *Service) Active(ctx context.Context, ownerID string) ([]View, error) {
	goals, err := s.filter(ctx, ownerID, func(g models.Goal) bool { return g.Status == models.GoalInProgress })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(goals, func(i, j int) bool {
		if ri, rj := goals[i].Priority.Rank(), goals[j].Priority.Rank(); ri != rj {
			return ri < rj
		}
		return goals[i].TargetDate.Before(goals[j].TargetDate)
	})
	return s.views(goals), nil
}

// Overdue returns IN_PROGRESS goals whose target date has passed.
func (s *Service) Overdue(ctx context.Context, ownerID string) ([]View, error) {
	today := clock.Today(s.clock)
	goals, err := s.filter(ctx, ownerID, func(g models.Goal) bool {
		return Derive(g, today).Overdue
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].TargetDate.Before(goals[j].TargetDate) })
	return s.views(goals), nil
}

func (s *Service) filter(ctx context.Context, ownerID string, keep func(models.Goal) bool) ([]models.Goal, error) {
	all, err := s.store.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []models.Goal
	for _, g := range all {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Service) views(goals []models.Goal) []View {
	today := clock.Today(s.clock)
	out := make([]View, 0, len(goals))
	for _, g := range goals {
		out = append(out, NewView(g, today))
	}
	return out
}

func (s *Service) mutate(ctx context.Context, ownerID, id string, fn func(models.Goal) (models.Goal, error)) (View, error) {
	g, err := s.store.GetGoal(ctx, ownerID, id)
	if err != nil {
		return View{}, err
	}
	before := g.Status
	g, err = fn(g)
	if err != nil {
		return View{}, err
	}
	if g.Status != before {
		slog.Info("goal status changed", "goal_id", id, "from", before, "to", g.Status)
	}
	return s.save(ctx, g)
}

func (s *Service) validate(ctx context.Context, g models.Goal) error {
	if g.TargetAmount.IsNegative() {
		return fmt.Errorf("%w: target amount must not be negative", models.ErrInvalidAmount)
	}
	if g.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: current amount must not be negative", models.ErrInvalidAmount)
	}
	if g.TargetDate.IsZero() {
		return fmt.Errorf("%w: target date", models.ErrMissingField)
	}
	if g.AccountID != "" {
		if _, err := s.store.GetAccount(ctx, g.OwnerID, g.AccountID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) save(ctx context.Context, g models.Goal) (View, error) {
	if err := s.store.SaveGoal(ctx, g); err != nil {
		return View{}, fmt.Errorf("failed to save goal: %w", err)
	}
	return NewView(g, clock.Today(s.clock)), nil
}
