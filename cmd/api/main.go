package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/scraps/internal/api"
	"github.com/fastprodman/scraps/internal/clock"
	"github.com/fastprodman/scraps/internal/events"
	"github.com/fastprodman/scraps/internal/events/kafka"
	"github.com/fastprodman/scraps/internal/infra/logging"
	"github.com/fastprodman/scraps/internal/infra/pgutils"
	"github.com/fastprodman/scraps/internal/services/accounting"
	"github.com/fastprodman/scraps/internal/services/analytics"
	"github.com/fastprodman/scraps/internal/services/fraud"
	"github.com/fastprodman/scraps/pkg/envconf"
	"github.com/fastprodman/scraps/pkg/shutdownqueue"
)

// exitStorageFatal tells the supervisor that storage is misconfigured.
const exitStorageFatal = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)

		code := 1
		if errors.Is(err, pgutils.ErrStorageFatal) {
			code = exitStorageFatal
		}

		//nolint:gocritic
		os.Exit(code)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.LoadDotenv(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	queue := shutdownqueue.New()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := queue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	policy, err := fraud.LoadPolicy(cfg.Risk.PolicyPath)
	if err != nil {
		return fmt.Errorf("load risk policy: %w", err)
	}

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	queue.Add(func(context.Context) error {
		slog.Info("Close database")

		return db.Close()
	})

	var publisher events.Publisher = events.Noop{}

	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = kp

		queue.Add(func(context.Context) error {
			slog.Info("Close kafka publisher")

			return kp.Close()
		})
	}

	retry := pgutils.PolicyFrom(cfg.Postgres)

	engine := accounting.New(db,
		accounting.WithPublisher(publisher),
		accounting.WithRetryPolicy(retry),
		accounting.WithPublishTimeout(cfg.Kafka.PublishTimeout),
	)
	stats := analytics.New(db, clock.System, retry)
	scanner := fraud.New(db, policy, clock.System, retry)

	// --- HTTP server ---
	fatalCh := make(chan error, 1)
	onFatal := func(err error) {
		select {
		case fatalCh <- err:
		default:
		}
	}

	srv := api.NewServer(cfg.Port, api.NewHandler(engine, stats, scanner, onFatal))

	// Register HTTP server graceful shutdown
	queue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	// --- Wait until the context cancels, the server errors out, or storage turns fatal ---
	select {
	case <-ctx.Done():
		// graceful path; deferred queue.Shutdown will run
		return nil
	case ferr := <-fatalCh:
		return fmt.Errorf("storage: %w", ferr)
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
