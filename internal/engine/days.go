package engine

import (
	"context"
	"time"

	"github.com/tartampluch/go-lunar/internal/ephemeris"
	"github.com/tartampluch/go-lunar/internal/phase"
	"golang.org/x/sync/errgroup"
)

// DayDescriptor is everything the renderer needs to know about one calendar day.
type DayDescriptor struct {
	Year  int
	Month time.Month
	Day   int

	// Lunation is computed at 00:00 UTC of the day.
	Lunation phase.Lunation

	NewMoon  bool
	FullMoon bool

	// BlackMoon and BlueMoon are only set when the phase falls on this day
	// and is the second of its kind in the month.
	BlackMoon bool
	BlueMoon  bool
}

// Date returns 00:00 UTC of the day.
func (d DayDescriptor) Date() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// civilDate keys events by calendar day.
type civilDate struct {
	month time.Month
	day   int
}

// BuildDays returns one DayDescriptor per day of year, in calendar order.
// newMoons and fullMoons must already be classified.
//
// Lunations are computed by at most workers goroutines; each result lands
// at its own index so the output does not depend on scheduling.
func BuildDays(ctx context.Context, year int, gw ephemeris.Gateway, newMoons, fullMoons []MoonEvent, workers int) ([]DayDescriptor, error) {
	start := yearStart(year)
	n := int(yearStart(year+1).Sub(start).Hours() / 24)

	newOn := eventsByDay(year, newMoons)
	fullOn := eventsByDay(year, fullMoons)

	days := make([]DayDescriptor, n)
	for i := range days {
		date := start.AddDate(0, 0, i)
		key := civilDate{date.Month(), date.Day()}
		nm, isNew := newOn[key]
		fm, isFull := fullOn[key]

		days[i] = DayDescriptor{
			Year:      year,
			Month:     date.Month(),
			Day:       date.Day(),
			NewMoon:   isNew,
			FullMoon:  isFull,
			BlackMoon: isNew && nm.SecondInMonth,
			BlueMoon:  isFull && fm.SecondInMonth,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range days {
		g.Go(func() error {
			f, err := phase.ComputeLunation(gctx, days[i].Date(), gw)
			if err != nil {
				return err
			}
			days[i].Lunation = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return days, nil
}

// eventsByDay indexes the events of year by UTC calendar date.
func eventsByDay(year int, events []MoonEvent) map[civilDate]MoonEvent {
	m := make(map[civilDate]MoonEvent, len(events))
	for _, e := range events {
		y, mo, d := e.Instant.UTC().Date()
		if y != year {
			continue
		}
		m[civilDate{mo, d}] = e
	}
	return m
}
