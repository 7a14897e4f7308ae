// Command contend hammers a fresh lazyonce.Cell with every strategy and
// reports how many times each one ran its factory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/vormadev/lazyonce/kit/colorlog"
	"github.com/vormadev/lazyonce/kit/contend"
	"github.com/vormadev/lazyonce/kit/lazyonce"
)

type instance struct {
	id        int64
	createdAt time.Time
}

type report struct {
	strategy   lazyonce.Strategy
	attempts   int64
	same       bool
	contended  time.Duration
	sequential time.Duration
}

func main() {
	cfg, err := loadConfig(".env")
	if err != nil {
		colorlog.New("contend").Error("bad configuration", "error", err)
		os.Exit(1)
	}
	log := colorlog.New("contend", colorlog.Options{Level: cfg.level})
	log.Info("starting", "goroutines", cfg.goroutines, "rounds", cfg.rounds)

	failed := false
	for _, s := range lazyonce.Strategies() {
		rep, err := run(context.Background(), s, cfg, log)
		if err != nil {
			log.Error("run failed", "strategy", s, "error", err)
			failed = true
			continue
		}
		l := log.With("strategy", rep.strategy, "attempts", rep.attempts,
			"contended", rep.contended, "sequential", rep.sequential)
		if rep.attempts != 1 || !rep.same {
			l.Error("singleton violated", "same", rep.same)
			failed = true
			continue
		}
		l.Info("ok")
	}
	if failed {
		os.Exit(1)
	}
}

func run(ctx context.Context, s lazyonce.Strategy, cfg config, log *slog.Logger) (report, error) {
	var ids atomic.Int64
	cell := lazyonce.New(func() (*instance, error) {
		return &instance{id: ids.Add(1), createdAt: time.Now()}, nil
	}, lazyonce.WithStrategy(s), lazyonce.WithLogger(log.WithGroup("cell")))

	start := time.Now()
	got, err := contend.Run(ctx, cfg.goroutines, func(context.Context, int) (*instance, error) {
		return cell.Get()
	})
	if err != nil {
		return report{}, fmt.Errorf("contended get: %w", err)
	}
	contended := time.Since(start)

	same := contend.Same(got)
	start = time.Now()
	for range cfg.rounds {
		v, err := cell.Get()
		if err != nil {
			return report{}, fmt.Errorf("sequential get: %w", err)
		}
		same = same && v == got[0]
	}
	log.Debug("instance", "strategy", s, "id", got[0].id, "created_at", got[0].createdAt)

	return report{
		strategy:   cell.Strategy(),
		attempts:   cell.Attempts(),
		same:       same,
		contended:  contended,
		sequential: time.Since(start),
	}, nil
}
