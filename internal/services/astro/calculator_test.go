package astro

import (
	"context"
	"errors"
	"math"
	"testing"

	"AstroChart/internal/domain/models"
	domsvc "AstroChart/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEphemeris struct {
	positions map[domsvc.Body]domsvc.EclipticPosition
	frame     domsvc.HouseFrame
	failOn    domsvc.Body
	fail      error
	calls     int
}

func (f *fakeEphemeris) Position(jd float64, body domsvc.Body) (domsvc.EclipticPosition, error) {
	f.calls++
	if f.fail != nil && body == f.failOn {
		return domsvc.EclipticPosition{}, f.fail
	}
	return f.positions[body], nil
}

func (f *fakeEphemeris) Houses(jd, lat, lng float64, system domsvc.HouseSystem) (domsvc.HouseFrame, error) {
	frame := f.frame
	if frame.System == 0 {
		frame.System = system
	}
	return frame, nil
}

func newFakeEphemeris() *fakeEphemeris {
	lon := map[domsvc.Body]float64{
		domsvc.Sun:        54.4,
		domsvc.Moon:       200.1,
		domsvc.Mercury:    40.0,
		domsvc.Venus:      20.0, // on the second cusp
		domsvc.Mars:       330.5,
		domsvc.Jupiter:    96.2,
		domsvc.Saturn:     294.0,
		domsvc.Uranus:     278.7,
		domsvc.Neptune:    284.3,
		domsvc.Pluto:      225.9,
		domsvc.Chiron:     105.0,
		domsvc.MeanNode:   309.0,
		domsvc.MeanApogee: 355.0,
	}
	positions := make(map[domsvc.Body]domsvc.EclipticPosition, len(lon))
	for b, l := range lon {
		positions[b] = domsvc.EclipticPosition{Longitude: l, Latitude: 1.5, LongitudeSpeed: 0.5}
	}
	positions[domsvc.Mercury] = domsvc.EclipticPosition{Longitude: 40, Latitude: -2, LongitudeSpeed: -0.3}

	return &fakeEphemeris{
		positions: positions,
		frame: domsvc.HouseFrame{
			Cusps:     wrapAtFirstHouse,
			Ascendant: 350,
			Midheaven: 260,
		},
	}
}

var kyiv = models.ChartInput{Date: "1990-05-15", Time: "14:30", Latitude: 50.4501, Longitude: 30.5234}

func TestCompute_Shape(t *testing.T) {
	calc := NewCalculator(newFakeEphemeris(), staticZones{zone: "Europe/Kyiv"})

	chart, err := calc.Compute(context.Background(), kyiv)
	require.NoError(t, err)

	require.Len(t, chart.Planets, 16)
	require.Len(t, chart.Houses, 12)

	names := make([]string, len(chart.Planets))
	for i, p := range chart.Planets {
		names[i] = p.Name
	}
	assert.Equal(t, []string{
		models.NameAscendant, models.NameMidheaven,
		models.NameSun, models.NameMoon, models.NameMercury, models.NameVenus, models.NameMars,
		models.NameJupiter, models.NameSaturn, models.NameUranus, models.NameNeptune, models.NamePluto,
		models.NameChiron, models.NameNorthNode, models.NameSouthNode, models.NameLilith,
	}, names)

	for i, h := range chart.Houses {
		assert.Equal(t, i+1, h.Number)
		assert.Equal(t, SignOf(h.Cusp), h.Sign)
	}

	assert.Equal(t, "placidus", chart.HouseSystem)
	assert.Equal(t, "Europe/Kyiv", chart.TimeZone)
}

func TestCompute_AnglesHaveNoHouse(t *testing.T) {
	calc := NewCalculator(newFakeEphemeris(), nil)

	chart, err := calc.Compute(context.Background(), kyiv)
	require.NoError(t, err)

	nonAngles := 0
	for _, p := range chart.Planets {
		if p.Kind == models.PointAngle {
			assert.Nil(t, p.House, p.Name)
			assert.Zero(t, p.Speed)
			continue
		}
		nonAngles++
		require.NotNil(t, p.House, p.Name)
		assert.GreaterOrEqual(t, *p.House, 1)
		assert.LessOrEqual(t, *p.House, 12)
	}
	assert.Equal(t, 14, nonAngles)

	for _, a := range chart.Aspects {
		assert.NotEqual(t, models.NameAscendant, a.Planet1)
		assert.NotEqual(t, models.NameAscendant, a.Planet2)
		assert.NotEqual(t, models.NameMidheaven, a.Planet1)
		assert.NotEqual(t, models.NameMidheaven, a.Planet2)
	}
}

func TestCompute_SouthNodeOpposesNorthNode(t *testing.T) {
	for _, nn := range []float64{0, 90, 179.999, 180, 309, 359.75} {
		eph := newFakeEphemeris()
		eph.positions[domsvc.MeanNode] = domsvc.EclipticPosition{Longitude: nn, LongitudeSpeed: -0.053}

		chart, err := NewCalculator(eph, nil).Compute(context.Background(), kyiv)
		require.NoError(t, err)

		north, ok := chart.Position(models.NameNorthNode)
		require.True(t, ok)
		south, ok := chart.Position(models.NameSouthNode)
		require.True(t, ok)

		assert.Equal(t, math.Mod(north.Longitude+180, 360), south.Longitude)
		assert.Zero(t, south.Latitude)
		assert.Zero(t, south.Speed)
		assert.Equal(t, models.PointDerived, south.Kind)
	}
}

func TestCompute_BodyOnCuspBelongsToThatHouse(t *testing.T) {
	chart, err := NewCalculator(newFakeEphemeris(), nil).Compute(context.Background(), kyiv)
	require.NoError(t, err)

	venus, ok := chart.Position(models.NameVenus)
	require.True(t, ok)
	require.NotNil(t, venus.House)
	assert.Equal(t, 2, *venus.House)

	lilith, ok := chart.Position(models.NameLilith)
	require.True(t, ok)
	assert.Equal(t, 1, *lilith.House)

	mars, ok := chart.Position(models.NameMars)
	require.True(t, ok)
	assert.Equal(t, 12, *mars.House)
}

func TestCompute_SignAndDegree(t *testing.T) {
	chart, err := NewCalculator(newFakeEphemeris(), nil).Compute(context.Background(), kyiv)
	require.NoError(t, err)

	sun, _ := chart.Position(models.NameSun)
	assert.Equal(t, models.Taurus, sun.Sign)
	assert.InDelta(t, 24.4, sun.Degree, 1e-9)

	mercury, _ := chart.Position(models.NameMercury)
	assert.True(t, mercury.Retrograde())
	assert.Equal(t, models.PointBody, mercury.Kind)
}

func TestCompute_AspectsUseHouseBearingPointsInOrder(t *testing.T) {
	calc := NewCalculator(newFakeEphemeris(), nil)
	chart, err := calc.Compute(context.Background(), kyiv)
	require.NoError(t, err)

	want := calc.Aspects().Classify(aspectInput(chart.HouseBearing()))
	assert.Equal(t, want, chart.Aspects)
	for _, a := range chart.Aspects {
		assert.LessOrEqual(t, a.Orb, calc.Aspects().MaxOrb(a.AspectType))
		assert.GreaterOrEqual(t, a.Angle, 0.0)
		assert.LessOrEqual(t, a.Angle, 180.0)
	}

	// Uranus 278.7 and Neptune 284.3 are conjunct
	found := false
	for _, a := range chart.Aspects {
		if a.Planet1 == models.NameUranus && a.Planet2 == models.NameNeptune {
			found = true
			assert.Equal(t, models.Conjunction, a.AspectType)
			assert.InDelta(t, 5.6, a.Orb, 1e-9)
		}
	}
	assert.True(t, found)
}

func TestCompute_Idempotent(t *testing.T) {
	calc := NewCalculator(newFakeEphemeris(), staticZones{zone: "Europe/Kyiv"})

	a, err := calc.Compute(context.Background(), kyiv)
	require.NoError(t, err)
	b, err := calc.Compute(context.Background(), kyiv)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCompute_EphemerisFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	for _, body := range []domsvc.Body{domsvc.Sun, domsvc.Chiron, domsvc.MeanApogee} {
		eph := newFakeEphemeris()
		eph.failOn, eph.fail = body, boom

		chart, err := NewCalculator(eph, nil).Compute(context.Background(), kyiv)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrEphemeris)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, chart.Planets)
	}
}

func TestCompute_InvalidInput(t *testing.T) {
	calc := NewCalculator(newFakeEphemeris(), nil)

	_, err := calc.Compute(context.Background(), models.ChartInput{Date: "1990-05-15", Time: "14:30", Latitude: 91})
	assert.ErrorIs(t, err, models.ErrInvalidLocation)

	_, err = calc.Compute(context.Background(), models.ChartInput{Date: "1990/05/15", Time: "14:30"})
	assert.ErrorIs(t, err, models.ErrInvalidDateTime)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = calc.Compute(ctx, kyiv)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompute_HouseSystemFallbackIsReported(t *testing.T) {
	eph := newFakeEphemeris()
	eph.frame.System = domsvc.Porphyry

	chart, err := NewCalculator(eph, nil, WithHouseSystem(domsvc.Placidus)).Compute(context.Background(), kyiv)
	require.NoError(t, err)
	assert.Equal(t, "porphyry", chart.HouseSystem)
}
