package models

import (
	"fmt"
	"time"
)

// PointKind tells house-bearing points apart from the chart angles.
type PointKind int

const (
	// PointBody is one of the twelve bodies read from the ephemeris.
	PointBody PointKind = iota
	// PointDerived is a point computed from other positions (South Node, Lilith).
	PointDerived
	// PointAngle is the Ascendant or the Midheaven. Angles carry no house and take no aspects.
	PointAngle
)

func (k PointKind) String() string {
	switch k {
	case PointBody:
		return "body"
	case PointDerived:
		return "derived"
	case PointAngle:
		return "angle"
	default:
		return fmt.Sprintf("PointKind(%d)", int(k))
	}
}

// HasHouse reports whether points of this kind are assigned to a house.
func (k PointKind) HasHouse() bool { return k != PointAngle }

// MarshalText implements encoding.TextMarshaler.
func (k PointKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PointKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "body":
		*k = PointBody
	case "derived":
		*k = PointDerived
	case "angle":
		*k = PointAngle
	default:
		return fmt.Errorf("unknown point kind %q", b)
	}
	return nil
}

// BodyPosition is one point of a chart.
type BodyPosition struct {
	Name      string    `json:"name"`
	Kind      PointKind `json:"kind"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	Speed     float64   `json:"speed"`
	Sign      Sign      `json:"sign"`
	Degree    float64   `json:"degree"`
	House     *int      `json:"house,omitempty"`
}

// Retrograde reports whether the point moves backwards along the ecliptic.
func (p BodyPosition) Retrograde() bool { return p.Speed < 0 }

// HouseCusp is the starting longitude of one house.
type HouseCusp struct {
	Number int     `json:"number"`
	Cusp   float64 `json:"cusp"`
	Sign   Sign    `json:"sign"`
}

// Aspect is a classified angular relation between two chart points.
type Aspect struct {
	Planet1    string     `json:"planet1"`
	Planet2    string     `json:"planet2"`
	AspectType AspectType `json:"aspect_type"`
	Angle      float64    `json:"angle"`
	Orb        float64    `json:"orb"`
}

// Chart is the computed natal chart.
type Chart struct {
	Planets     []BodyPosition `json:"planets"`
	Houses      []HouseCusp    `json:"houses"`
	Aspects     []Aspect       `json:"aspects"`
	HouseSystem string         `json:"house_system"`
	JulianDay   float64        `json:"julian_day"`
	UTC         time.Time      `json:"utc"`
	TimeZone    string         `json:"time_zone"`
}

// Position returns the point with the given name.
func (c *Chart) Position(name string) (BodyPosition, bool) {
	for _, p := range c.Planets {
		if p.Name == name {
			return p, true
		}
	}
	return BodyPosition{}, false
}

// HouseBearing returns every point except the angles, in chart order.
func (c *Chart) HouseBearing() []BodyPosition {
	out := make([]BodyPosition, 0, len(c.Planets))
	for _, p := range c.Planets {
		if p.Kind.HasHouse() {
			out = append(out, p)
		}
	}
	return out
}

// NatalChart is a stored chart together with the birth data it was computed from.
type NatalChart struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BirthDate     string    `json:"birth_date"`
	BirthTime     string    `json:"birth_time"`
	BirthLocation string    `json:"birth_location"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Chart
	CreatedAt time.Time `json:"created_at"`
}

// ChartEvent is published whenever a chart is stored or removed.
type ChartEvent struct {
	Type      string    `json:"type"`
	ChartID   string    `json:"chart_id"`
	Name      string    `json:"name,omitempty"`
	Sun       string    `json:"sun,omitempty"`
	Moon      string    `json:"moon,omitempty"`
	Ascendant string    `json:"ascendant,omitempty"`
	At        time.Time `json:"at"`
}

const (
	ChartEventCreated = "chart.created"
	ChartEventDeleted = "chart.deleted"
)

// PositionRow is the flat analytics record written for each chart point.
type PositionRow struct {
	ChartID    string
	ComputedAt time.Time
	JulianDay  float64
	Name       string
	Kind       string
	Longitude  float64
	Latitude   float64
	Speed      float64
	Sign       string
	House      uint8
}
