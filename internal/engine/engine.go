package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/ephemeris"
)

var (
	// ErrInvalidYear is returned before any computation for a year outside
	// [config.MinYear, config.MaxYear].
	ErrInvalidYear = errors.New(config.ErrInvalidYear)

	// ErrGatewayContract is returned when the gateway answers out of order,
	// whether the violation shows up during enumeration or lunation.
	ErrGatewayContract = ephemeris.ErrContract
)

// YearReport is the complete, read-only result for one calendar year.
type YearReport struct {
	Year      int
	Days      []DayDescriptor
	NewMoons  []MoonEvent
	FullMoons []MoonEvent
}

// Generator is the core service computing a YearReport.
type Generator struct {
	Gateway ephemeris.Gateway // Source of phase instants.
	Clock   Clock             // Interface for time mocking (iCalendar stamps).

	// Workers bounds concurrent lunation computations. Values below 1 mean sequential.
	Workers int
}

// ValidateYear reports whether year is within the supported range.
func ValidateYear(year int) error {
	if year < config.MinYear || year > config.MaxYear {
		return fmt.Errorf("%w: %d (supported %d-%d)", ErrInvalidYear, year, config.MinYear, config.MaxYear)
	}
	return nil
}

// Generate runs the enumeration, classification and day building pipeline.
// Any failure aborts the whole year; no partial report is returned.
func (g *Generator) Generate(ctx context.Context, year int) (*YearReport, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	if g.Gateway == nil {
		return nil, errors.New(config.ErrGatewayMissing)
	}

	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyYear, year,
		config.LogKeyGateway, g.Gateway.Name(),
		config.LogKeyWorkers, max(g.Workers, 1),
	)
	log.InfoContext(ctx, config.MsgGenStarted)

	// Enumeration is sequential: each query starts from the previous answer.
	newMoons, err := g.events(ctx, log, year, NewMoon)
	if err != nil {
		return nil, err
	}
	fullMoons, err := g.events(ctx, log, year, FullMoon)
	if err != nil {
		return nil, err
	}

	days, err := BuildDays(ctx, year, g.Gateway, newMoons, fullMoons, g.Workers)
	if err != nil {
		return nil, err
	}

	report := &YearReport{
		Year:      year,
		Days:      days,
		NewMoons:  newMoons,
		FullMoons: fullMoons,
	}

	log.InfoContext(ctx, config.MsgGenSuccess,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyDays, len(days)),
			slog.Int(config.LogKeyNewMoons, len(newMoons)),
			slog.Int(config.LogKeyFullMoons, len(fullMoons)),
			slog.Int(config.LogKeyBlack, countSecond(newMoons)),
			slog.Int(config.LogKeyBlue, countSecond(fullMoons)),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return report, nil
}

// events enumerates and classifies one kind of phase.
func (g *Generator) events(ctx context.Context, log *slog.Logger, year int, kind MoonKind) ([]MoonEvent, error) {
	raw, err := EnumerateEvents(ctx, year, kind, g.Gateway)
	if err != nil {
		return nil, err
	}
	events := ClassifySecondInMonth(raw)

	log.DebugContext(ctx, config.MsgEventsFound,
		config.LogKeyKind, kind.String(),
		config.LogKeyCount, len(events),
	)
	for _, e := range events {
		if e.SecondInMonth {
			log.InfoContext(ctx, config.MsgRepeatedMoon,
				config.LogKeyKind, kind.String(),
				config.LogKeyInstant, e.Instant.Format(time.RFC3339),
			)
		}
	}
	return events, nil
}

func countSecond(events []MoonEvent) int {
	n := 0
	for _, e := range events {
		if e.SecondInMonth {
			n++
		}
	}
	return n
}
