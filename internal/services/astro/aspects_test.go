package astro

import (
	"testing"

	"AstroChart/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeparation(t *testing.T) {
	assert.InDelta(t, 20.0, Separation(10, 350), 1e-12)
	assert.InDelta(t, 20.0, Separation(350, 10), 1e-12)
	assert.InDelta(t, 180.0, Separation(0, 180), 1e-12)
	assert.InDelta(t, 0.0, Separation(123.4, 123.4), 1e-12)
	assert.InDelta(t, 179.0, Separation(0.5, 181.5), 1e-12)
}

func TestClassify_WrapIsNotConjunction(t *testing.T) {
	c := NewAspectClassifier(nil)

	got := c.Classify([]NamedLongitude{{"A", 10}, {"B", 350}})
	assert.Empty(t, got)
}

func TestClassify_OrbBoundaries(t *testing.T) {
	c := NewAspectClassifier(nil)

	cases := []struct {
		sep  float64
		want models.AspectType
		ok   bool
	}{
		{0, models.Conjunction, true},
		{8, models.Conjunction, true},
		{8.5, "", false},
		{54, models.Sextile, true},
		{66, models.Sextile, true},
		{66.5, "", false},
		{82, models.Square, true},
		{98, models.Square, true},
		{112, models.Trine, true},
		{128, models.Trine, true},
		{150, "", false},
		{172, models.Opposition, true},
		{180, models.Opposition, true},
	}
	for _, tc := range cases {
		rule, orb, ok := c.Match(tc.sep)
		require.Equal(t, tc.ok, ok, "sep=%v", tc.sep)
		if ok {
			assert.Equal(t, tc.want, rule.Type, "sep=%v", tc.sep)
			assert.LessOrEqual(t, orb, rule.Orb)
		}
	}
}

func TestClassify_PairOrderAndFields(t *testing.T) {
	c := NewAspectClassifier(nil)
	points := []NamedLongitude{
		{"Sun", 0},
		{"Moon", 62},
		{"Mars", 95},
		{"Venus", 178},
	}

	got := c.Classify(points)

	want := []models.Aspect{
		{Planet1: "Sun", Planet2: "Moon", AspectType: models.Sextile, Angle: 62, Orb: 2},
		{Planet1: "Sun", Planet2: "Mars", AspectType: models.Square, Angle: 95, Orb: 5},
		{Planet1: "Sun", Planet2: "Venus", AspectType: models.Opposition, Angle: 178, Orb: 2},
		{Planet1: "Moon", Planet2: "Venus", AspectType: models.Trine, Angle: 116, Orb: 4},
		{Planet1: "Mars", Planet2: "Venus", AspectType: models.Square, Angle: 83, Orb: 7},
	}
	assert.Equal(t, want, got)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewAspectClassifier(map[models.AspectType]float64{
		models.Conjunction: 40,
		models.Sextile:     40,
	})

	got := c.Classify([]NamedLongitude{{"A", 0}, {"B", 35}})
	require.Len(t, got, 1)
	assert.Equal(t, models.Conjunction, got[0].AspectType)
	assert.Equal(t, 40.0, c.MaxOrb(models.Conjunction))
}

func TestClassify_Invariants(t *testing.T) {
	c := NewAspectClassifier(nil)
	var points []NamedLongitude
	for i := 0; i < 14; i++ {
		points = append(points, NamedLongitude{Name: string(rune('A' + i)), Longitude: float64(i*37%360) + 0.3*float64(i)})
	}

	seen := map[[2]string]bool{}
	for _, a := range c.Classify(points) {
		assert.NotEqual(t, a.Planet1, a.Planet2)
		assert.LessOrEqual(t, a.Orb, c.MaxOrb(a.AspectType))
		assert.GreaterOrEqual(t, a.Angle, 0.0)
		assert.LessOrEqual(t, a.Angle, 180.0)
		key := [2]string{a.Planet1, a.Planet2}
		assert.False(t, seen[key], "duplicate pair %v", key)
		seen[key] = true
	}
}
