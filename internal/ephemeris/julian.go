package ephemeris

import (
	"math"
	"time"
)

const (
	secondsPerDay = 86400.0

	// julianUnixEpoch is the Julian Day of 1970-01-01T00:00:00Z.
	julianUnixEpoch = 2440587.5
)

// toJulian converts t to a Julian Day number in the same time scale.
func toJulian(t time.Time) float64 {
	return float64(t.Unix())/secondsPerDay + float64(t.Nanosecond())/1e9/secondsPerDay + julianUnixEpoch
}

// fromJulian converts a Julian Day number to a UTC time rounded to the second.
func fromJulian(jd float64) time.Time {
	secs := math.Round((jd - julianUnixEpoch) * secondsPerDay)
	return time.Unix(int64(secs), 0).UTC()
}

// decimalYear approximates the calendar year of jd, good enough for ΔT and k estimation.
func decimalYear(jd float64) float64 {
	return 2000 + (jd-2451545.0)/365.25
}

// deltaT returns TT − UT in seconds for the given decimal year
// (Espenak & Meeus polynomial fits, long-term parabola outside them).
func deltaT(y float64) float64 {
	switch {
	case y >= 2005 && y < 2050:
		t := y - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case y >= 1986 && y < 2005:
		t := y - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t + 0.000651814*t*t*t*t + 0.00002373599*t*t*t*t*t
	case y >= 1961 && y < 1986:
		t := y - 1975
		return 45.45 + 1.067*t - t*t/260 - t*t*t/718
	case y >= 1941 && y < 1961:
		t := y - 1950
		return 29.07 + 0.407*t - t*t/233 + t*t*t/2547
	case y >= 1920 && y < 1941:
		t := y - 1920
		return 21.20 + 0.84493*t - 0.076100*t*t + 0.0020936*t*t*t
	case y >= 1900 && y < 1920:
		t := y - 1900
		return -2.79 + 1.494119*t - 0.0598939*t*t + 0.0061966*t*t*t - 0.000197*t*t*t*t
	case y >= 2050 && y < 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}
