// Command scrapsctl operates the scraps ledger directly against Postgres.
//
//	scrapsctl account add --name alice --balance 100
//	scrapsctl debit <account-id> 30 --reason "Coffee"
//	scrapsctl fraud --hours 72
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/scraps/internal/cli"
	"github.com/fastprodman/scraps/internal/clock"
	"github.com/fastprodman/scraps/internal/config"
	"github.com/fastprodman/scraps/internal/infra/logging"
	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/services/accounting"
	"github.com/fastprodman/scraps/internal/services/analytics"
	"github.com/fastprodman/scraps/internal/services/fraud"
	"github.com/fastprodman/scraps/pkg/envconf"
)

const exitStorageFatal = 3

type ctlConfig struct {
	LogLevel slog.Level `env:"SCRAPSCTL_LOG_LEVEL" envDefault:"WARN"`

	Postgres config.PostgresConfig
	Risk     config.RiskConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, open, os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scrapsctl: %v\n", err)

		code := 1
		if errors.Is(err, pgutils.ErrStorageFatal) {
			code = exitStorageFatal
		}

		//nolint:gocritic
		os.Exit(code)
	}
}

func open(ctx context.Context) (*cli.Services, func() error, error) {
	cfg := new(ctlConfig)

	err := envconf.LoadDotenv(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init config: %w", err)
	}

	// stdout carries command output
	slog.SetDefault(logging.NewJSON(os.Stderr, cfg.LogLevel))

	policy, err := fraud.LoadPolicy(cfg.Risk.PolicyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load risk policy: %w", err)
	}

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}

	retry := pgutils.PolicyFrom(cfg.Postgres)

	svc := &cli.Services{
		Accounting: accounting.New(db, accounting.WithRetryPolicy(retry)),
		Analytics:  analytics.New(db, clock.System, retry),
		Fraud:      fraud.New(db, policy, clock.System, retry),
	}

	return svc, db.Close, nil
}
