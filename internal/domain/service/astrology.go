package service

import (
	"context"
	"fmt"

	"AstroChart/internal/domain/models"
)

// Body identifies a point the ephemeris can evaluate.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	Chiron
	MeanNode
	MeanApogee
)

var bodyNames = map[Body]string{
	Sun:        models.NameSun,
	Moon:       models.NameMoon,
	Mercury:    models.NameMercury,
	Venus:      models.NameVenus,
	Mars:       models.NameMars,
	Jupiter:    models.NameJupiter,
	Saturn:     models.NameSaturn,
	Uranus:     models.NameUranus,
	Neptune:    models.NameNeptune,
	Pluto:      models.NamePluto,
	Chiron:     models.NameChiron,
	MeanNode:   models.NameNorthNode,
	MeanApogee: models.NameLilith,
}

func (b Body) String() string {
	if n, ok := bodyNames[b]; ok {
		return n
	}
	return fmt.Sprintf("Body(%d)", int(b))
}

// EclipticPosition is a geocentric apparent position of date.
type EclipticPosition struct {
	Longitude      float64 // degrees, [0, 360)
	Latitude       float64 // degrees
	Distance       float64 // AU
	LongitudeSpeed float64 // degrees per day, negative when retrograde
	LatitudeSpeed  float64
	DistanceSpeed  float64
}

// HouseSystem is a one-letter house system code.
type HouseSystem byte

const (
	Placidus  HouseSystem = 'P'
	Porphyry  HouseSystem = 'O'
	Equal     HouseSystem = 'E'
	WholeSign HouseSystem = 'W'
)

func (h HouseSystem) String() string {
	switch h {
	case Placidus:
		return "placidus"
	case Porphyry:
		return "porphyry"
	case Equal:
		return "equal"
	case WholeSign:
		return "whole_sign"
	default:
		return fmt.Sprintf("HouseSystem(%c)", byte(h))
	}
}

// ParseHouseSystem accepts a one-letter code or a lower-case name.
func ParseHouseSystem(s string) (HouseSystem, error) {
	switch s {
	case "P", "placidus", "":
		return Placidus, nil
	case "O", "porphyry":
		return Porphyry, nil
	case "E", "equal":
		return Equal, nil
	case "W", "whole_sign":
		return WholeSign, nil
	}
	return 0, fmt.Errorf("unknown house system %q", s)
}

// HouseFrame is the output of a house division.
type HouseFrame struct {
	Cusps     [12]float64
	Ascendant float64
	Midheaven float64
	ARMC      float64
	// System is the system actually used, which differs from the requested
	// one when Placidus is undefined at the given latitude.
	System HouseSystem
}

// Ephemeris evaluates body positions and house cusps at a Julian day (UT).
type Ephemeris interface {
	Position(jd float64, body Body) (EclipticPosition, error)
	Houses(jd, lat, lng float64, system HouseSystem) (HouseFrame, error)
}

// TimeZoneLookup resolves the IANA zone containing a coordinate.
type TimeZoneLookup interface {
	ZoneAt(lat, lng float64) (string, bool)
}

// ChartCalculator computes natal charts from civil birth data.
type ChartCalculator interface {
	Compute(ctx context.Context, in models.ChartInput) (models.Chart, error)
}
