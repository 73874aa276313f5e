package ephemeris

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPhaseJDE_ReferenceExample reproduces the worked example of the
// algorithm: the new moon of 1977 February (k = -283) at JDE 2443192.65118.
func TestPhaseJDE_ReferenceExample(t *testing.T) {
	jde := phaseJDE(-283, false)
	assert.InDelta(t, 2443192.65118, jde, 1e-4)
}

func TestMeeus_KnownInstants(t *testing.T) {
	g := NewMeeus()
	ctx := context.Background()

	tests := []struct {
		name  string
		query func(context.Context, time.Time) (time.Time, error)
		from  time.Time
		want  time.Time
	}{
		{"NewMoon2020Jan", g.NextNewMoon, date(2020, 1, 1), time.Date(2020, 1, 24, 21, 42, 0, 0, time.UTC)},
		{"BlueMoon2020Oct", g.NextFullMoon, date(2020, 10, 15), time.Date(2020, 10, 31, 14, 49, 0, 0, time.UTC)},
		{"BlackMoon2019Aug", g.NextNewMoon, date(2019, 8, 15), time.Date(2019, 8, 30, 10, 37, 0, 0, time.UTC)},
		{"BlueMoon2018Jan", g.NextFullMoon, date(2018, 1, 15), time.Date(2018, 1, 31, 13, 27, 0, 0, time.UTC)},
		{"PreviousNewMoon2020", g.PreviousNewMoon, date(2020, 2, 1), time.Date(2020, 1, 24, 21, 42, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.query(ctx, tt.from)
			require.NoError(t, err)
			assert.WithinDuration(t, tt.want, got, 10*time.Minute)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

// TestMeeus_Strictness verifies the gateway never returns its own input,
// even when the input is exactly a phase instant.
func TestMeeus_Strictness(t *testing.T) {
	g := NewMeeus()
	ctx := context.Background()

	nm, err := g.NextNewMoon(ctx, date(2024, 3, 1))
	require.NoError(t, err)

	next, err := g.NextNewMoon(ctx, nm)
	require.NoError(t, err)
	assert.True(t, next.After(nm))
	assert.InDelta(t, 29.53, next.Sub(nm).Hours()/24, 0.5)

	prev, err := g.PreviousNewMoon(ctx, nm)
	require.NoError(t, err)
	assert.True(t, prev.Before(nm))
	assert.InDelta(t, 29.53, nm.Sub(prev).Hours()/24, 0.5)

	again, err := g.PreviousNewMoon(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, nm, again)
}

func TestMeeus_ConsecutiveSpacing(t *testing.T) {
	g := NewMeeus()
	ctx := context.Background()

	cursor := date(1999, 12, 1)
	for i := 0; i < 60; i++ {
		next, err := g.NextFullMoon(ctx, cursor)
		require.NoError(t, err)
		if i > 0 {
			days := next.Sub(cursor).Hours() / 24
			assert.Greater(t, days, 29.2)
			assert.Less(t, days, 29.9)
		}
		cursor = next
	}
}

func TestMeeus_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMeeus().NextNewMoon(ctx, date(2020, 1, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeltaT_Continuity(t *testing.T) {
	// Adjacent polynomial pieces must agree within a few seconds.
	for _, y := range []float64{1920, 1941, 1961, 1986, 2005} {
		assert.InDelta(t, deltaT(y-1e-6), deltaT(y), 3, "discontinuity at %v", y)
	}
	assert.InDelta(t, 70, deltaT(2020), 3)
	assert.False(t, math.IsNaN(deltaT(1000)))
}

func TestJulianRoundTrip(t *testing.T) {
	ts := time.Date(2020, 10, 31, 14, 49, 7, 0, time.UTC)
	assert.Equal(t, ts, fromJulian(toJulian(ts)))
	assert.InDelta(t, 2451545.0, toJulian(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)), 1e-9)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
