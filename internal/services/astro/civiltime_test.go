package astro

import (
	"testing"
	"time"

	"AstroChart/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticZones struct {
	zone string
}

func (z staticZones) ZoneAt(lat, lng float64) (string, bool) {
	return z.zone, z.zone != ""
}

func TestResolve_LocalizesWithDST(t *testing.T) {
	r := NewCivilTimeResolver(staticZones{zone: "America/New_York"}, nil)

	summer, err := r.Resolve("2021-07-01", "12:00", 40.71, -74.0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 7, 1, 16, 0, 0, 0, time.UTC), summer.UTC)
	assert.Equal(t, "America/New_York", summer.Zone)

	winter, err := r.Resolve("2021-01-15", "12:00", 40.71, -74.0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 15, 17, 0, 0, 0, time.UTC), winter.UTC)
}

func TestResolve_ZoneMissFallsBackToUTC(t *testing.T) {
	r := NewCivilTimeResolver(staticZones{}, nil)

	inst, err := r.Resolve("1990-05-15", "14:30", -10, -140)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 5, 15, 14, 30, 0, 0, time.UTC), inst.UTC)
	assert.Empty(t, inst.Zone)
}

func TestResolve_UnknownZoneFallsBackToUTC(t *testing.T) {
	r := NewCivilTimeResolver(staticZones{zone: "Mars/Olympus_Mons"}, nil)

	inst, err := r.Resolve("1990-05-15", "14:30", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 5, 15, 14, 30, 0, 0, time.UTC), inst.UTC)
	assert.Empty(t, inst.Zone)
}

func TestResolve_NilLookup(t *testing.T) {
	r := NewCivilTimeResolver(nil, nil)

	inst, err := r.Resolve("2000-01-01", "12:00", 51.5, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2451545.0, inst.JulianDay, 1e-9)
}

func TestResolve_Malformed(t *testing.T) {
	r := NewCivilTimeResolver(nil, nil)

	for _, tc := range [][2]string{
		{"1990-13-01", "10:00"},
		{"1990-02-30", "10:00"},
		{"15.05.1990", "10:00"},
		{"1990-05-15", "24:00"},
		{"1990-05-15", "7pm"},
		{"", ""},
	} {
		_, err := r.Resolve(tc[0], tc[1], 0, 0)
		assert.ErrorIs(t, err, models.ErrInvalidDateTime, "%v", tc)
	}
}

func TestJulianDay(t *testing.T) {
	assert.InDelta(t, 2451545.0, JulianDay(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)), 1e-9)
	assert.InDelta(t, 2448027.1041667, JulianDay(time.Date(1990, 5, 15, 14, 30, 0, 0, time.UTC)), 1e-6)
	// 1957-10-04 19:26:24 UT
	assert.InDelta(t, 2436116.31, JulianDay(time.Date(1957, 10, 4, 19, 26, 24, 0, time.UTC)), 1e-6)

	loc := time.FixedZone("UTC+3", 3*3600)
	assert.InDelta(t, 2451545.0, JulianDay(time.Date(2000, 1, 1, 15, 0, 0, 0, loc)), 1e-9)
}
