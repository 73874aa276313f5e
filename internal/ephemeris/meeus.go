package ephemeris

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
)

const (
	synodicMonth  = 29.530588861
	lunationEpoch = 2451550.09766 // JDE of the mean new moon of 2000-01-06, k = 0
	meanPhaseTerm = 1236.85

	phaseNew  = 0.0
	phaseFull = 0.5

	// maxPhaseSteps bounds the walk from the estimated lunation number.
	maxPhaseSteps = 8
)

// Meeus computes phase instants with the truncated series of
// "Astronomical Algorithms" (2nd ed., ch. 49). Results are accurate to about
// a minute over the supported year range and rounded to the second.
// It holds no state and is safe for concurrent use.
type Meeus struct{}

// NewMeeus returns the algorithmic gateway.
func NewMeeus() *Meeus { return &Meeus{} }

func (*Meeus) Name() string { return "meeus" }

func (m *Meeus) PreviousNewMoon(ctx context.Context, t time.Time) (time.Time, error) {
	return m.previous(ctx, t, phaseNew)
}

func (m *Meeus) NextNewMoon(ctx context.Context, t time.Time) (time.Time, error) {
	return m.next(ctx, t, phaseNew)
}

func (m *Meeus) NextFullMoon(ctx context.Context, t time.Time) (time.Time, error) {
	return m.next(ctx, t, phaseFull)
}

// next walks forward from a lunation number known to precede t.
func (*Meeus) next(ctx context.Context, t time.Time, offset float64) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	k := math.Floor(estimateLunation(t)-offset) - 1 + offset
	for i := 0; i < maxPhaseSteps; i++ {
		if inst := phaseInstant(k, offset); inst.After(t) {
			return inst, nil
		}
		k++
	}
	return time.Time{}, fmt.Errorf("%s: no phase after %s", config.ErrGatewayQuery, t.Format(time.RFC3339))
}

// previous walks backward from a lunation number known to follow t.
func (*Meeus) previous(ctx context.Context, t time.Time, offset float64) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	k := math.Ceil(estimateLunation(t)-offset) + 1 + offset
	for i := 0; i < maxPhaseSteps; i++ {
		if inst := phaseInstant(k, offset); inst.Before(t) {
			return inst, nil
		}
		k--
	}
	return time.Time{}, fmt.Errorf("%s: no phase before %s", config.ErrGatewayQuery, t.Format(time.RFC3339))
}

// estimateLunation returns the fractional mean lunation number at t.
func estimateLunation(t time.Time) float64 {
	return (toJulian(t) - lunationEpoch) / synodicMonth
}

// phaseInstant returns the UT instant of the phase with lunation number k
// (integer for new moons, integer + 0.5 for full moons).
func phaseInstant(k, offset float64) time.Time {
	jde := phaseJDE(k, offset == phaseFull)
	return fromJulian(jde - deltaT(decimalYear(jde))/secondsPerDay)
}

// phaseJDE returns the true phase instant in Julian Ephemeris Days.
func phaseJDE(k float64, full bool) float64 {
	T := k / meanPhaseTerm
	T2, T3, T4 := T*T, T*T*T, T*T*T*T

	jde := lunationEpoch + synodicMonth*k + 0.00015437*T2 - 0.000000150*T3 + 0.00000000073*T4

	E := 1 - 0.002516*T - 0.0000074*T2
	M := rad(2.5534 + 29.10535670*k - 0.0000014*T2 - 0.00000011*T3)
	Mp := rad(201.5643 + 385.81693528*k + 0.0107582*T2 + 0.00001238*T3 - 0.000000058*T4)
	F := rad(160.7108 + 390.67050284*k - 0.0016118*T2 - 0.00000227*T3 + 0.000000011*T4)
	O := rad(124.7746 - 1.56375588*k + 0.0020672*T2 + 0.00000215*T3)

	var c float64
	if full {
		c = -0.40614*math.Sin(Mp) +
			0.17302*E*math.Sin(M) +
			0.01614*math.Sin(2*Mp) +
			0.01043*math.Sin(2*F) +
			0.00734*E*math.Sin(Mp-M) -
			0.00515*E*math.Sin(Mp+M) +
			0.00209*E*E*math.Sin(2*M)
	} else {
		c = -0.40720*math.Sin(Mp) +
			0.17241*E*math.Sin(M) +
			0.01608*math.Sin(2*Mp) +
			0.01039*math.Sin(2*F) +
			0.00739*E*math.Sin(Mp-M) -
			0.00514*E*math.Sin(Mp+M) +
			0.00208*E*E*math.Sin(2*M)
	}
	c += -0.00111*math.Sin(Mp-2*F) -
		0.00057*math.Sin(Mp+2*F) +
		0.00056*E*math.Sin(2*Mp+M) -
		0.00042*math.Sin(3*Mp) +
		0.00042*E*math.Sin(M+2*F) +
		0.00038*E*math.Sin(M-2*F) -
		0.00024*E*math.Sin(2*Mp-M) -
		0.00017*math.Sin(O) -
		0.00007*math.Sin(Mp+2*M) +
		0.00004*math.Sin(2*Mp-2*F) +
		0.00004*math.Sin(3*M) +
		0.00003*math.Sin(Mp+M-2*F) +
		0.00003*math.Sin(2*Mp+2*F) -
		0.00003*math.Sin(Mp+M+2*F) +
		0.00003*math.Sin(Mp-M+2*F) -
		0.00002*math.Sin(Mp-M-2*F) -
		0.00002*math.Sin(3*Mp+M) +
		0.00002*math.Sin(4*Mp)

	return jde + c + planetaryCorrection(k, T2)
}

// planetary arguments A1..A14 with their amplitudes in days.
var planetaryTerms = [14]struct{ base, rate, amp float64 }{
	{299.77, 0.107408, 0.000325},
	{251.88, 0.016321, 0.000165},
	{251.83, 26.651886, 0.000164},
	{349.42, 36.412478, 0.000126},
	{84.66, 18.206239, 0.000110},
	{141.74, 53.303771, 0.000062},
	{207.14, 2.453732, 0.000060},
	{154.84, 7.306860, 0.000056},
	{34.52, 27.261239, 0.000047},
	{207.19, 0.121824, 0.000042},
	{291.34, 1.844379, 0.000040},
	{161.72, 24.198154, 0.000037},
	{239.56, 25.513099, 0.000035},
	{331.55, 3.592518, 0.000023},
}

func planetaryCorrection(k, T2 float64) float64 {
	var sum float64
	for i, p := range planetaryTerms {
		arg := p.base + p.rate*k
		if i == 0 {
			arg -= 0.009173 * T2
		}
		sum += p.amp * math.Sin(rad(arg))
	}
	return sum
}

func rad(deg float64) float64 {
	return math.Mod(deg, 360) * math.Pi / 180
}
