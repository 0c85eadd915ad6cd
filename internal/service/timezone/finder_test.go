package timezone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNamer struct {
	zone  string
	calls int
}

func (n *countingNamer) GetTimezoneName(lng, lat float64) string {
	n.calls++
	return n.zone
}

func TestFinder_Memoizes(t *testing.T) {
	namer := &countingNamer{zone: "Europe/Kyiv"}
	f, err := New(WithNamer(namer), WithCacheSize(8))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		zone, ok := f.ZoneAt(50.4501, 30.5234)
		assert.True(t, ok)
		assert.Equal(t, "Europe/Kyiv", zone)
	}
	assert.Equal(t, 1, namer.calls)

	// same 1e-4 cell
	_, _ = f.ZoneAt(50.45012, 30.52338)
	assert.Equal(t, 1, namer.calls)

	_, _ = f.ZoneAt(48.0, 30.0)
	assert.Equal(t, 2, namer.calls)
}

func TestFinder_Miss(t *testing.T) {
	namer := &countingNamer{}
	f, err := New(WithNamer(namer))
	require.NoError(t, err)

	zone, ok := f.ZoneAt(0, -140)
	assert.False(t, ok)
	assert.Empty(t, zone)

	_, ok = f.ZoneAt(0, -140)
	assert.False(t, ok)
	assert.Equal(t, 1, namer.calls)
}

func TestFinder_NauticalZoneIsMiss(t *testing.T) {
	namer := &countingNamer{zone: "Etc/GMT+8"}
	f, err := New(WithNamer(namer))
	require.NoError(t, err)

	zone, ok := f.ZoneAt(-40, -120)
	assert.False(t, ok)
	assert.Empty(t, zone)

	_, ok = f.ZoneAt(-40, -120)
	assert.False(t, ok)
	assert.Equal(t, 1, namer.calls)
}

func TestFinder_DefaultPolygons(t *testing.T) {
	if testing.Short() {
		t.Skip("loads tz polygons")
	}
	f, err := New()
	require.NoError(t, err)

	zone, ok := f.ZoneAt(40.7128, -74.0060)
	require.True(t, ok)
	assert.Equal(t, "America/New_York", zone)

	zone, ok = f.ZoneAt(50.4501, 30.5234)
	require.True(t, ok)
	assert.Contains(t, []string{"Europe/Kyiv", "Europe/Kiev"}, zone)

	// South Pacific
	zone, ok = f.ZoneAt(-40, -120)
	assert.False(t, ok)
	assert.Empty(t, zone)
}
