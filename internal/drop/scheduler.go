package drop

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"dailydeals-be/internal/clock"
	"dailydeals-be/internal/logger"

	"go.uber.org/zap"
)

// Scheduler regenerates the day's free-drop schedule. Each call is
// destructive for the current day and intentionally not idempotent:
// invoke it once per promotion cycle, from the admin endpoint or a
// daily job, never implicitly.
type Scheduler interface {
	ReseedToday(ctx context.Context, count int) ([]*FreeDrop, error)
}

type scheduler struct {
	repo   Repository
	clk    clock.Clock
	window clock.Window
	rng    *rand.Rand
}

func NewScheduler(repo Repository, clk clock.Clock, window clock.Window) Scheduler {
	return &scheduler{
		repo:   repo,
		clk:    clk,
		window: window,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSchedulerWithRand pins the randomness source, for tests.
func NewSchedulerWithRand(repo Repository, clk clock.Clock, window clock.Window, rng *rand.Rand) Scheduler {
	return &scheduler{repo: repo, clk: clk, window: window, rng: rng}
}

func (s *scheduler) ReseedToday(ctx context.Context, count int) ([]*FreeDrop, error) {
	if count <= 0 {
		return nil, errors.New("drop count must be positive")
	}

	now := s.clk.Now()
	start, end := clock.DayBounds(now)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ReseedToday"),
		zap.Int("count", count),
		zap.Time("window_day", start),
	)

	log.Info("reseeding today's drop schedule")

	times := s.window.RandomTimes(now, count, s.rng)

	drops, err := s.repo.ReseedWindow(ctx, start, end, count, times)
	if err != nil {
		log.Warn("reseed failed", zap.Error(err))
		return nil, err
	}

	log.Info("drop schedule ready",
		zap.Int("drops", len(drops)),
		zap.Time("first_drop", drops[0].DropAt),
		zap.Time("last_drop", drops[len(drops)-1].DropAt),
	)

	return drops, nil
}
