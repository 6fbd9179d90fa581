package main

import (
	"fmt"
	"os"

	"github.com/rocjay1/rm-finance/internal/ledger"
	"github.com/spf13/cobra"
)

func (c *cli) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <account-id>...",
		Short: "Replay transactions and report balance drift",
		Long: `verify recomputes each account's transaction effects from scratch and
compares them with the stored balance. Drift includes the opening balance.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := c.owner()
			if err != nil {
				return err
			}
			type check struct {
				AccountID string `json:"account_id"`
				Balance   string `json:"balance"`
				Replayed  string `json:"replayed"`
				Drift     string `json:"drift"`
				Count     int    `json:"transaction_count"`
			}
			checks := make([]check, 0, len(args))
			for _, id := range args {
				a, err := c.engine.Store.GetAccount(cmd.Context(), owner, id)
				if err != nil {
					return fmt.Errorf("failed to load account %s: %w", id, err)
				}
				txns, err := c.engine.Store.ListAccountTransactions(cmd.Context(), owner, id)
				if err != nil {
					return fmt.Errorf("failed to list transactions of %s: %w", id, err)
				}
				replayed := ledger.Replay(txns, id)
				checks = append(checks, check{
					AccountID: id,
					Balance:   a.Balance.String(),
					Replayed:  replayed.String(),
					Drift:     a.Balance.Sub(replayed).String(),
					Count:     len(txns),
				})
			}
			return c.print(checks)
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Book the rows of a local CSV file",
		Long: `import parses a CSV export and books every valid row through the ledger.
Rows already booked by an earlier import of the same content are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := c.owner()
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			res, err := c.engine.Importer.Import(cmd.Context(), owner, string(content))
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(c.out, "created %d, skipped %d duplicates, %d errors\n", len(res.Created), res.Duplicates, len(res.Errors))
			for _, e := range res.Errors {
				fmt.Fprintf(c.out, "  %s\n", e)
			}
			return nil
		},
	}
}
