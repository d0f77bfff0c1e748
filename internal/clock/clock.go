// Package clock resolves "today" and the daily drop window in the
// store's fixed regional timezone, independent of the host timezone.
package clock

import (
	"time"

	"dailydeals-be/internal/logger"

	"go.uber.org/zap"
)

// Timezone is the promotional timezone (SAST, UTC+2, no DST).
const Timezone = "Africa/Johannesburg"

// Clock supplies the current time. Injected so the scheduler and the
// drop evaluator can be tested against arbitrary instants.
type Clock interface {
	Now() time.Time
}

type sastClock struct {
	loc *time.Location
}

// NewSAST returns a Clock that reports time in Africa/Johannesburg.
func NewSAST() Clock {
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		logger.L().Error("failed to load store timezone, defaulting to UTC", zap.Error(err))
		loc = time.UTC
	}
	return &sastClock{loc: loc}
}

func (c *sastClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	t time.Time
}

// Fixed returns a Clock pinned to t, for tests.
func Fixed(t time.Time) Clock {
	return &fixedClock{t: t}
}

func (c *fixedClock) Now() time.Time {
	return c.t
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DayBounds returns the inclusive [start, end] boundary of t's day,
// used to scope every "today's drops" query.
func DayBounds(t time.Time) (time.Time, time.Time) {
	return StartOfDay(t), EndOfDay(t)
}
