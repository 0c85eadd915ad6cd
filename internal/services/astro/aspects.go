package astro

import (
	"math"

	"AstroChart/internal/domain/models"
)

// AspectRule is one canonical angle with its maximum orb.
type AspectRule struct {
	Angle float64
	Type  models.AspectType
	Orb   float64
}

// DefaultAspectRules lists the aspects in the order they are tested.
// The first rule within orb wins.
var DefaultAspectRules = []AspectRule{
	{Angle: 0, Type: models.Conjunction, Orb: 8},
	{Angle: 60, Type: models.Sextile, Orb: 6},
	{Angle: 90, Type: models.Square, Orb: 8},
	{Angle: 120, Type: models.Trine, Orb: 8},
	{Angle: 180, Type: models.Opposition, Orb: 8},
}

// NamedLongitude is the input of the classifier.
type NamedLongitude struct {
	Name      string
	Longitude float64
}

// AspectClassifier finds aspects between pairs of points.
type AspectClassifier struct {
	rules []AspectRule
}

// NewAspectClassifier builds a classifier over DefaultAspectRules, with orbs
// optionally overridden per aspect type. Rule order never changes.
func NewAspectClassifier(orbs map[models.AspectType]float64) *AspectClassifier {
	rules := make([]AspectRule, len(DefaultAspectRules))
	copy(rules, DefaultAspectRules)
	for i := range rules {
		if orb, ok := orbs[rules[i].Type]; ok && orb >= 0 {
			rules[i].Orb = orb
		}
	}
	return &AspectClassifier{rules: rules}
}

// MaxOrb returns the orb configured for an aspect type.
func (c *AspectClassifier) MaxOrb(t models.AspectType) float64 {
	for _, r := range c.rules {
		if r.Type == t {
			return r.Orb
		}
	}
	return 0
}

// Separation is the angular distance between two longitudes, in [0, 180].
func Separation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Match classifies a single separation.
func (c *AspectClassifier) Match(separation float64) (AspectRule, float64, bool) {
	for _, r := range c.rules {
		diff := math.Abs(separation - r.Angle)
		if diff <= r.Orb {
			return r, diff, true
		}
	}
	return AspectRule{}, 0, false
}

// Classify returns the aspects between every pair (i < j) of points, in
// pair-enumeration order. Pairs outside every orb are omitted.
func (c *AspectClassifier) Classify(points []NamedLongitude) []models.Aspect {
	aspects := make([]models.Aspect, 0)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			sep := Separation(points[i].Longitude, points[j].Longitude)
			rule, orb, ok := c.Match(sep)
			if !ok {
				continue
			}
			aspects = append(aspects, models.Aspect{
				Planet1:    points[i].Name,
				Planet2:    points[j].Name,
				AspectType: rule.Type,
				Angle:      sep,
				Orb:        orb,
			})
		}
	}
	return aspects
}
