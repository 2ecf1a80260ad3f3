// Package cli implements scrapsctl, the operator CLI over the accounting,
// analytics and fraud services.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fastprodman/scraps/internal/api"
)

// Services are what commands call.
type Services struct {
	Accounting api.Accounting
	Analytics  api.Analytics
	Fraud      api.FraudScanner
}

// Opener connects the services. They are opened lazily so --help works
// without a database.
type Opener func(ctx context.Context) (svc *Services, closeFn func() error, err error)

type app struct {
	open    Opener
	svc     *Services
	closeFn func() error
}

func (a *app) services(cmd *cobra.Command) (*Services, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	svc, closeFn, err := a.open(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	a.svc, a.closeFn = svc, closeFn

	return svc, nil
}

func (a *app) close() error {
	if a.closeFn == nil {
		return nil
	}

	closeFn := a.closeFn
	a.svc, a.closeFn = nil, nil

	return closeFn()
}

// Execute runs scrapsctl with args and releases opened services even when a
// command fails.
func Execute(ctx context.Context, open Opener, args []string, out, errOut io.Writer) error {
	a := &app{open: open}

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)

	return errors.Join(err, a.close())
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scrapsctl",
		Short: "Operate the scraps ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAccountCommand(a),
		newCreditCommand(a),
		newDebitCommand(a),
		newBatchCommand(a),
		newFraudCommand(a),
		newStatsCommand(a),
	)

	return rootCmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
