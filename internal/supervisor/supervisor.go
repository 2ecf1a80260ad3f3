// Package supervisor keeps a child process running, restarting it after
// failures until it fails too often within a sliding window.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/scraps/internal/clock"
)

var ErrTooManyRestarts = errors.New("too many restarts")

// Runner starts the supervised work and blocks until it ends. A nil error
// is a clean exit and is not restarted.
type Runner interface {
	Run(ctx context.Context) error
}

type Config struct {
	MaxRestarts int           `env:"SUPERVISOR_MAX_RESTARTS" envDefault:"10"`
	Window      time.Duration `env:"SUPERVISOR_WINDOW" envDefault:"5m"`
	Delay       time.Duration `env:"SUPERVISOR_DELAY" envDefault:"5s"`
}

func DefaultConfig() Config {
	return Config{MaxRestarts: 10, Window: 5 * time.Minute, Delay: 5 * time.Second}
}

type Supervisor struct {
	runner Runner
	cfg    Config
	clock  clock.Clock
	sleep  func(ctx context.Context, d time.Duration) error

	// restarts holds the timestamps of restarts still inside cfg.Window.
	restarts []time.Time
}

type Option func(*Supervisor)

func WithClock(c clock.Clock) Option { return func(s *Supervisor) { s.clock = c } }

func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Supervisor) { s.sleep = fn }
}

func New(r Runner, cfg Config, opts ...Option) *Supervisor {
	s := &Supervisor{
		runner: r,
		cfg:    cfg,
		clock:  clock.System,
		sleep:  sleepCtx,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run blocks until the child exits cleanly, ctx is canceled, or the restart
// budget is spent.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		err := s.runner.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if err == nil {
			slog.Info("child exited cleanly")

			return nil
		}

		now := s.clock.Now()
		s.prune(now)

		if len(s.restarts) >= s.cfg.MaxRestarts {
			return fmt.Errorf("%w: %d within %s, last error: %w",
				ErrTooManyRestarts, len(s.restarts), s.cfg.Window, err)
		}

		s.restarts = append(s.restarts, now)

		slog.Warn("child failed, restarting",
			"error", err, "restarts", len(s.restarts), "max_restarts", s.cfg.MaxRestarts, "delay", s.cfg.Delay)

		err = s.sleep(ctx, s.cfg.Delay)
		if err != nil {
			return nil
		}
	}
}

// RecentRestarts reports how many restarts fall inside the window ending now.
func (s *Supervisor) RecentRestarts() int {
	s.prune(s.clock.Now())

	return len(s.restarts)
}

func (s *Supervisor) prune(now time.Time) {
	cutoff := now.Add(-s.cfg.Window)

	keep := s.restarts[:0]
	for _, t := range s.restarts {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}

	s.restarts = keep
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
