// Command supervisor runs another command and restarts it when it fails.
//
//	supervisor [--] /usr/local/bin/api [args...]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fastprodman/scraps/internal/infra/logging"
	"github.com/fastprodman/scraps/internal/supervisor"
	"github.com/fastprodman/scraps/pkg/envconf"
)

type supervisorConfig struct {
	LogLevel  slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	WaitDelay time.Duration `env:"SUPERVISOR_WAIT_DELAY" envDefault:"10s"`
	Restart   supervisor.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "supervisor: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}

	if len(args) == 0 {
		return errors.New("usage: supervisor [--] command [args...]")
	}

	cfg := new(supervisorConfig)

	err := envconf.LoadDotenv(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	runner := supervisor.ExecRunner{Path: args[0], Args: args[1:], WaitDelay: cfg.WaitDelay}

	slog.Info("supervising", "command", args[0],
		"max_restarts", cfg.Restart.MaxRestarts, "window", cfg.Restart.Window)

	return supervisor.New(runner, cfg.Restart).Run(ctx)
}
