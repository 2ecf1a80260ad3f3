package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastprodman/scraps/internal/services/accounting"
)

type batchOutput struct {
	Operation string   `json:"operation"`
	Filter    string   `json:"filter"`
	Amount    int64    `json:"amount"`
	Affected  int      `json:"affected"`
	Skipped   []string `json:"skipped"`
}

func newBatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Apply one amount to every account matching a filter",
	}

	cmd.AddCommand(
		newBatchOpCommand(a, accounting.BatchAdd, "add", "Credit matching accounts"),
		newBatchOpCommand(a, accounting.BatchRemove, "remove", "Debit matching accounts that can afford it"),
	)

	return cmd
}

func newBatchOpCommand(a *app, op accounting.BatchOp, use, short string) *cobra.Command {
	var (
		filter string
		reason string
	)

	cmd := &cobra.Command{
		Use:   use + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			svc, err := a.services(cmd)
			if err != nil {
				return err
			}

			res, err := svc.Accounting.Batch(cmd.Context(), string(op), filter, amount, reason)
			if err != nil {
				return fmt.Errorf("batch %s: %w", use, err)
			}

			out := batchOutput{
				Operation: string(res.Op),
				Filter:    res.Filter,
				Amount:    res.Amount,
				Affected:  res.AffectedCount(),
				Skipped:   make([]string, 0, len(res.Skipped)),
			}
			for _, s := range res.Skipped {
				out.Skipped = append(out.Skipped, s.Name)
			}

			return printJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "case-insensitive name substring; empty matches all")
	cmd.Flags().StringVar(&reason, "reason", "", "ledger reason")

	return cmd
}
