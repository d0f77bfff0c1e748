package clock

import (
	"math/rand"
	"sort"
	"time"
)

// Window is a daily time range bounded by whole hours, e.g. 08:00-12:00.
// The end hour is exclusive.
type Window struct {
	StartHour int
	EndHour   int
}

// Bounds returns the window's absolute start and end on t's day.
func (w Window) Bounds(t time.Time) (time.Time, time.Time) {
	day := StartOfDay(t)
	return day.Add(time.Duration(w.StartHour) * time.Hour),
		day.Add(time.Duration(w.EndHour) * time.Hour)
}

// Contains reports whether t falls inside the window on its own day.
func (w Window) Contains(t time.Time) bool {
	h := t.Hour()
	return h >= w.StartHour && h < w.EndHour
}

// RandomTimes draws count instants independently and uniformly at random
// within the window on t's day, returned in ascending order.
func (w Window) RandomTimes(t time.Time, count int, rng *rand.Rand) []time.Time {
	start, end := w.Bounds(t)
	span := end.Sub(start)

	times := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		times = append(times, start.Add(time.Duration(rng.Int63n(int64(span)))))
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}
