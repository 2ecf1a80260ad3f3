package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type balanceOutput struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

type mutateFunc func(ctx context.Context, accountID string, amount int64, reason string) (int64, error)

func newCreditCommand(a *app) *cobra.Command {
	return newMutateCommand(a, "credit", "Add scraps to an account", func(s *Services) mutateFunc {
		return s.Accounting.Credit
	})
}

func newDebitCommand(a *app) *cobra.Command {
	return newMutateCommand(a, "debit", "Remove scraps from an account", func(s *Services) mutateFunc {
		return s.Accounting.Debit
	})
}

func newMutateCommand(a *app, use, short string, pick func(*Services) mutateFunc) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   use + " <account-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			svc, err := a.services(cmd)
			if err != nil {
				return err
			}

			balance, err := pick(svc)(cmd.Context(), args[0], amount, reason)
			if err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}

			return printJSON(cmd, balanceOutput{AccountID: args[0], Balance: balance})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "ledger reason")

	return cmd
}

func parseAmount(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q: not an integer", s)
	}

	return v, nil
}
