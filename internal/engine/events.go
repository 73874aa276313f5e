package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/ephemeris"
)

// MoonKind distinguishes the two phases the calendar annotates.
type MoonKind int

const (
	NewMoon MoonKind = iota
	FullMoon
)

func (k MoonKind) String() string {
	if k == NewMoon {
		return "new"
	}
	return "full"
}

// MoonEvent is one occurrence of a phase.
type MoonEvent struct {
	// Instant is the UTC time of the phase.
	Instant time.Time

	Kind MoonKind

	// SecondInMonth is set on an event sharing its calendar month with the
	// event right before it: a black moon for new moons, a blue moon for full moons.
	SecondInMonth bool
}

// EnumerateEvents returns every occurrence of kind within year, in
// chronological order, unclassified.
//
// A year covers [Jan 1 00:00, next Jan 1 00:00) UTC. The first query is
// issued one nanosecond before Jan 1 so an event exactly at midnight is kept;
// the last query overshoots into the next year and its answer is dropped.
func EnumerateEvents(ctx context.Context, year int, kind MoonKind, gw ephemeris.Gateway) ([]MoonEvent, error) {
	next := gw.NextNewMoon
	if kind == FullMoon {
		next = gw.NextFullMoon
	}

	start := yearStart(year)
	end := yearStart(year + 1)
	cursor := start.Add(-time.Nanosecond)

	var events []MoonEvent
	for i := 0; i < config.MaxEventsPerYear; i++ {
		inst, err := next(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrEnumerate, err)
		}
		if !inst.After(cursor) {
			return nil, fmt.Errorf("%w: next %s moon %s does not follow %s", ErrGatewayContract,
				kind, inst.Format(time.RFC3339), cursor.Format(time.RFC3339))
		}
		if !inst.Before(end) {
			return events, nil
		}
		events = append(events, MoonEvent{Instant: inst.UTC(), Kind: kind})
		cursor = inst
	}
	return nil, fmt.Errorf("%w: more than %d %s moons in %d", ErrGatewayContract, config.MaxEventsPerYear-1, kind, year)
}

// ClassifySecondInMonth returns a copy of events with SecondInMonth set on
// each event whose month equals that of its immediate predecessor.
// events must be in chronological order; the first one is never flagged.
func ClassifySecondInMonth(events []MoonEvent) []MoonEvent {
	out := make([]MoonEvent, len(events))
	copy(out, events)

	var prevYear int
	var prevMonth time.Month
	for i := range out {
		y, m, _ := out[i].Instant.UTC().Date()
		out[i].SecondInMonth = i > 0 && y == prevYear && m == prevMonth
		prevYear, prevMonth = y, m
	}
	return out
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
