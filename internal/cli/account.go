package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastprodman/scraps/internal/ledger"
)

type accountOutput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

func toAccountOutput(acc ledger.Account) accountOutput {
	return accountOutput{ID: acc.ID, Name: acc.Name, Balance: acc.Balance}
}

func newAccountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Create and inspect accounts",
	}

	cmd.AddCommand(
		newAccountAddCommand(a),
		newAccountGetCommand(a),
		newAccountListCommand(a),
	)

	return cmd
}

func newAccountAddCommand(a *app) *cobra.Command {
	var (
		name    string
		initial int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.services(cmd)
			if err != nil {
				return err
			}

			acc, err := svc.Accounting.AddAccount(cmd.Context(), name, initial)
			if err != nil {
				return fmt.Errorf("add account: %w", err)
			}

			return printJSON(cmd, toAccountOutput(acc))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name")
	cmd.Flags().Int64Var(&initial, "balance", 0, "opening balance in scraps")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAccountGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.services(cmd)
			if err != nil {
				return err
			}

			acc, err := svc.Accounting.GetAccount(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get account: %w", err)
			}

			return printJSON(cmd, toAccountOutput(acc))
		},
	}
}

func newAccountListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [name-filter]",
		Short: "List accounts, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.services(cmd)
			if err != nil {
				return err
			}

			var filter string
			if len(args) == 1 {
				filter = args[0]
			}

			list, err := svc.Accounting.SearchAccounts(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list accounts: %w", err)
			}

			out := make([]accountOutput, 0, len(list))
			for _, acc := range list {
				out = append(out, toAccountOutput(acc))
			}

			return printJSON(cmd, out)
		},
	}
}
