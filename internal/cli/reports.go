package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFraudCommand(a *app) *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "fraud",
		Short: "Scan recent ledger activity for suspicious patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.services(cmd)
			if err != nil {
				return err
			}

			rep, err := svc.Fraud.Scan(cmd.Context(), hours)
			if err != nil {
				return fmt.Errorf("fraud scan: %w", err)
			}

			return printJSON(cmd, rep)
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "window length in hours")

	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.services(cmd)
			if err != nil {
				return err
			}

			st, err := svc.Analytics.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			return printJSON(cmd, st)
		},
	}
}
