package ephemeris

import (
	"math"
	"testing"

	"AstroChart/internal/domain/models"
	domsvc "AstroChart/internal/domain/service"

	"github.com/soniakeys/meeus/v3/deltat"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// utFromTD converts a dynamical-time Julian day from a worked example to UT.
func utFromTD(jde float64) float64 {
	return jde - deltaT(jde)/86400
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	require.NoError(t, err)
	return e
}

func TestPosition_Sun(t *testing.T) {
	e := newTestEngine(t)

	// 1992-10-13 0h TD, apparent longitude 199°54'32"
	pos, err := e.Position(utFromTD(2448908.5), domsvc.Sun)
	require.NoError(t, err)

	assert.InDelta(t, 199.90895, pos.Longitude, 0.01)
	assert.InDelta(t, 0.99766, pos.Distance, 0.0001)
	assert.InDelta(t, 0.985, pos.LongitudeSpeed, 0.03)
}

func TestPosition_Moon(t *testing.T) {
	e := newTestEngine(t)

	// 1992-04-12 0h TD: geometric λ 133.162655, Δψ +0.004610
	pos, err := e.Position(utFromTD(2448724.5), domsvc.Moon)
	require.NoError(t, err)

	assert.InDelta(t, 133.167265, pos.Longitude, 0.002)
	assert.InDelta(t, -3.229126, pos.Latitude, 0.001)
	assert.InDelta(t, 368409.7/auKm, pos.Distance, 1e-6)
	assert.Greater(t, pos.LongitudeSpeed, 11.0)
	assert.Less(t, pos.LongitudeSpeed, 16.0)
}

func TestPosition_Venus(t *testing.T) {
	e := newTestEngine(t)

	// 1992-12-20 0h TD
	pos, err := e.Position(utFromTD(2448976.5), domsvc.Venus)
	require.NoError(t, err)

	assert.InDelta(t, 313.08102, pos.Longitude, 0.02)
	assert.InDelta(t, -2.08474, pos.Latitude, 0.01)
	assert.InDelta(t, 0.910947, pos.Distance, 0.001)
}

func TestPosition_MeanNodeIsRetrograde(t *testing.T) {
	e := newTestEngine(t)

	pos, err := e.Position(2451545.0, domsvc.MeanNode)
	require.NoError(t, err)

	// 18.6-year regression
	assert.InDelta(t, -0.05295, pos.LongitudeSpeed, 0.001)
	assert.Zero(t, pos.Latitude)
}

func TestPosition_MeanApogeeOppositePerigee(t *testing.T) {
	e := newTestEngine(t)

	pos, err := e.Position(2451545.0, domsvc.MeanApogee)
	require.NoError(t, err)

	// mean perigee at J2000 is 83.3532°
	assert.InDelta(t, normDeg(83.3532465+180), pos.Longitude, 0.01)
	assert.LessOrEqual(t, math.Abs(pos.Latitude), lunarInclination)
	// apsidal line advances about 0.1114°/day
	assert.InDelta(t, 0.1114, pos.LongitudeSpeed, 0.002)
}

func TestPosition_AllBodiesInRange(t *testing.T) {
	e := newTestEngine(t)
	bodies := []domsvc.Body{
		domsvc.Sun, domsvc.Moon, domsvc.Mercury, domsvc.Venus, domsvc.Mars,
		domsvc.Jupiter, domsvc.Saturn, domsvc.Uranus, domsvc.Neptune, domsvc.Pluto,
		domsvc.Chiron, domsvc.MeanNode, domsvc.MeanApogee,
	}

	for _, jd := range []float64{2415020.5, 2448027.1, 2451545.0, 2470000.5, 2500000.5} {
		for _, b := range bodies {
			pos, err := e.Position(jd, b)
			require.NoError(t, err, "jd=%v body=%s", jd, b)
			assert.GreaterOrEqual(t, pos.Longitude, 0.0)
			assert.Less(t, pos.Longitude, 360.0)
			assert.False(t, math.IsNaN(pos.LongitudeSpeed), "speed of %s", b)
			assert.Less(t, math.Abs(pos.Latitude), 20.0, "latitude of %s", b)
		}
	}
}

func TestPosition_Deterministic(t *testing.T) {
	e := newTestEngine(t)

	a, err := e.Position(2448027.1, domsvc.Mars)
	require.NoError(t, err)
	b, err := e.Position(2448027.1, domsvc.Mars)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPosition_OutOfRange(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Position(MinJD-1, domsvc.Sun)
	assert.ErrorIs(t, err, models.ErrOutOfRange)

	_, err = e.Position(MaxJD+1, domsvc.Moon)
	assert.ErrorIs(t, err, models.ErrOutOfRange)

	_, err = e.Houses(math.NaN(), 50, 30, domsvc.Placidus)
	assert.ErrorIs(t, err, models.ErrOutOfRange)
}

func TestPosition_UnknownBody(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Position(2451545.0, domsvc.Body(99))
	assert.ErrorIs(t, err, models.ErrEphemeris)
}

func TestNewEngine_MissingVSOP87(t *testing.T) {
	_, err := NewEngine(WithVSOP87(t.TempDir()))
	assert.Error(t, err)
}

func TestOutOfRangeNamesDate(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Position(MaxJD+1, domsvc.Sun)
	assert.ErrorIs(t, err, models.ErrOutOfRange)
	assert.Contains(t, err.Error(), "2400-01-0")

	assert.Equal(t, "2000-01-01", jdString(2451545.0))
	assert.Equal(t, "invalid", jdString(math.NaN()))
}

func TestDeltaT(t *testing.T) {
	year := func(y int) float64 { return julian.CalendarGregorianToJD(y, 1, 1) }

	assert.InDelta(t, 63.8, deltaT(year(2000)), 0.2)
	assert.InDelta(t, 56.9, deltaT(year(1990)), 0.5)
	assert.InDelta(t, 29.1, deltaT(year(1950)), 0.3)
	assert.InDelta(t, 24.0, deltaT(year(1670)), 0.5)

	// polynomials beyond the table
	assert.InDelta(t, float64(deltat.Poly948to1600(1610)), deltaT(year(1610)), 0.5)
	assert.InDelta(t, float64(deltat.PolyAfter2000(2050)), deltaT(year(2050)), 0.5)
	assert.Greater(t, deltaT(year(2100)), deltaT(year(2050)))
}

func TestAngleDiff(t *testing.T) {
	assert.InDelta(t, 2.0, angleDiff(1, 359), 1e-12)
	assert.InDelta(t, -2.0, angleDiff(359, 1), 1e-12)
	assert.InDelta(t, 180.0, angleDiff(180, 0), 1e-12)
}

func TestKeplerWindowInsideRange(t *testing.T) {
	from := julian.CalendarGregorianToJD(keplerValidFrom, 1, 1)
	to := julian.CalendarGregorianToJD(keplerValidTo, 1, 1)

	assert.GreaterOrEqual(t, from, MinJD)
	assert.LessOrEqual(t, to, MaxJD)
	assert.Less(t, from, to)
}
