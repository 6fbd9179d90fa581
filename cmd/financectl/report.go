package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rocjay1/rm-finance/internal/analytics"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/spf13/cobra"
)

func (c *cli) summaryCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard summary for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner, err := c.owner()
			if err != nil {
				return err
			}
			period, err := c.period(from, to)
			if err != nil {
				return err
			}
			summary, err := c.engine.Analytics.Summary(cmd.Context(), owner, period)
			if err != nil {
				return fmt.Errorf("failed to build summary: %w", err)
			}
			return c.print(summary)
		},
	}
	periodFlags(cmd, &from, &to)
	return cmd
}

func (c *cli) categoryStatsCmd() *cobra.Command {
	var from, to, typ string
	cmd := &cobra.Command{
		Use:   "category-stats",
		Short: "Break a period's totals down by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner, err := c.owner()
			if err != nil {
				return err
			}
			period, err := c.period(from, to)
			if err != nil {
				return err
			}
			t := models.TransactionType(strings.ToUpper(typ))
			if t != "" && !t.Valid() {
				return fmt.Errorf("%w: transaction type %q", models.ErrInvalidType, typ)
			}
			stats, err := c.engine.Analytics.CategoryStatistics(cmd.Context(), owner, period, t)
			if err != nil {
				return fmt.Errorf("failed to build category statistics: %w", err)
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "CATEGORY\tTOTAL\tCOUNT\tSHARE")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s%%\n", s.CategoryName, s.TotalAmount.StringFixed(2), s.TransactionCount, s.Percentage.StringFixed(2))
			}
			return nil
		},
	}
	periodFlags(cmd, &from, &to)
	cmd.Flags().StringVar(&typ, "type", "", "limit to INCOME, EXPENSE or TRANSFER")
	return cmd
}

func (c *cli) trendsCmd() *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show monthly income, expense and savings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner, err := c.owner()
			if err != nil {
				return err
			}
			trends, err := c.engine.Analytics.Trends(cmd.Context(), owner, months)
			if err != nil {
				return fmt.Errorf("failed to build trends: %w", err)
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSE\tNET\tCUMULATIVE")
			for _, m := range trends {
				fmt.Fprintf(w, "%s %d\t%s\t%s\t%s\t%s\n", m.Month, m.Year,
					m.Income.StringFixed(2), m.Expense.StringFixed(2), m.NetSavings.StringFixed(2), m.Balance.StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", analytics.SummaryTrendMonths, "number of months ending with the current one")
	return cmd
}

func (c *cli) compareCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a period with the equal-length period before it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			owner, err := c.owner()
			if err != nil {
				return err
			}
			period, err := c.period(from, to)
			if err != nil {
				return err
			}
			cmp, err := c.engine.Analytics.Compare(cmd.Context(), owner, period)
			if err != nil {
				return fmt.Errorf("failed to compare periods: %w", err)
			}
			return c.print(cmp)
		},
	}
	periodFlags(cmd, &from, &to)
	return cmd
}
