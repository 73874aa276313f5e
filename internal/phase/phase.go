// Package phase turns a position in the synodic month into disc geometry.
package phase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/ephemeris"
)

// Lunation is the fraction of the synodic month elapsed, in [0, 1).
// 0 is a new moon, 0.5 a full moon.
type Lunation float64

// Side names a half of the disc as seen by the observer.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Terminator describes the arc separating the lit and shadowed parts of a disc.
type Terminator struct {
	// ArcRadius is the radius of the circle the terminator is an arc of.
	// It grows without bound as the terminator straightens at the quarters.
	ArcRadius float64

	// Side is the side of the vertical diameter the arc bulges towards.
	Side Side

	// Lit is the half of the disc that holds the illuminated region.
	Lit Side
}

// ComputeLunation returns the lunation at instant date.
//
// The bracketing new moons are found as following = next(date) and
// preceding = previous(following), so a date falling exactly on a new moon
// yields 0 rather than the middle of the previous cycle.
func ComputeLunation(ctx context.Context, date time.Time, gw ephemeris.Gateway) (Lunation, error) {
	following, err := gw.NextNewMoon(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrLunation, err)
	}
	preceding, err := gw.PreviousNewMoon(ctx, following)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrLunation, err)
	}
	if preceding.After(date) || !following.After(preceding) {
		return 0, fmt.Errorf("%w: new moons %s and %s do not bracket %s", ephemeris.ErrContract,
			preceding.Format(time.RFC3339), following.Format(time.RFC3339), date.Format(time.RFC3339))
	}

	f := float64(date.Sub(preceding)) / float64(following.Sub(preceding))
	// Both bounds hold by construction; the guard only absorbs float rounding.
	if f >= 1 {
		f = math.Nextafter(1, 0)
	}
	return Lunation(f), nil
}

// ComputeTerminatorArc returns the terminator for lunation f on a disc of
// radius discRadius.
//
// Each quarter is folded onto L in [0, 0.25]; the chord offset n from the
// centre is clamped away from zero so a straight terminator comes out as a
// very large but finite radius.
func ComputeTerminatorArc(f Lunation, discRadius float64) Terminator {
	var (
		L    float64
		side Side
		lit  Side
	)

	switch {
	case f <= 0.25:
		L, side, lit = float64(f), Right, Right
	case f <= 0.5:
		L, side, lit = 0.5-float64(f), Left, Right
	case f <= 0.75:
		L, side, lit = float64(f)-0.5, Right, Left
	default:
		L, side, lit = 1-float64(f), Left, Left
	}

	x := discRadius * (1 - math.Cos(2*math.Pi*L))
	n := math.Max(discRadius-x, config.MinTerminatorOffset*discRadius)

	return Terminator{
		ArcRadius: (discRadius*discRadius + n*n) / (2 * n),
		Side:      side,
		Lit:       lit,
	}
}
