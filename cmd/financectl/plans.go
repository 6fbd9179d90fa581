package main

import (
	"fmt"

	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/spf13/cobra"
)

func (c *cli) budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Inspect budgets and refresh their spent amounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "alerts",
		Short: "List active budgets past their alert threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner, err := c.owner()
			if err != nil {
				return err
			}
			alerts, err := c.engine.Budgets.Alerts(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("failed to list budget alerts: %w", err)
			}
			if alerts == nil {
				alerts = []budget.View{}
			}
			return c.print(alerts)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "recompute <budget-id>...",
		Short: "Recompute the spent amount of one or more budgets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := c.owner()
			if err != nil {
				return err
			}
			views := make([]budget.View, 0, len(args))
			for _, id := range args {
				b, err := c.engine.Budgets.Recompute(cmd.Context(), owner, id)
				if err != nil {
					return fmt.Errorf("failed to recompute budget %s: %w", id, err)
				}
				views = append(views, budget.NewView(b))
			}
			return c.print(views)
		},
	})

	return cmd
}

func (c *cli) goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Inspect savings goals",
	}

	lists := []struct {
		use, short string
		list       func(*cli, *cobra.Command, string) ([]goal.View, error)
	}{
		{"list", "List every goal", func(c *cli, cmd *cobra.Command, owner string) ([]goal.View, error) {
			return c.engine.Goals.List(cmd.Context(), owner)
		}},
		{"active", "List goals in progress, nearest deadline first", func(c *cli, cmd *cobra.Command, owner string) ([]goal.View, error) {
			return c.engine.Goals.Active(cmd.Context(), owner)
		}},
		{"overdue", "List goals in progress past their target date", func(c *cli, cmd *cobra.Command, owner string) ([]goal.View, error) {
			return c.engine.Goals.Overdue(cmd.Context(), owner)
		}},
	}
	for _, l := range lists {
		cmd.AddCommand(&cobra.Command{
			Use:   l.use,
			Short: l.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				owner, err := c.owner()
				if err != nil {
					return err
				}
				views, err := l.list(c, cmd, owner)
				if err != nil {
					return fmt.Errorf("failed to list goals: %w", err)
				}
				if views == nil {
					views = []goal.View{}
				}
				return c.print(views)
			},
		})
	}

	return cmd
}
