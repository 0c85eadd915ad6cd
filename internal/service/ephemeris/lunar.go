package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonposition"
)

// Mean inclination of the lunar orbit to the ecliptic.
const lunarInclination = 5.145396

// moonPosition returns the Moon's geometric longitude and latitude of date
// (degrees) and its distance in AU.
func moonPosition(jde float64) (lon, lat, dist float64) {
	λ, β, Δ := moonposition.Position(jde)
	return λ.Deg(), β.Deg(), Δ / auKm
}

// meanNode returns the longitude of the mean ascending node of date.
func meanNode(jde float64) float64 {
	return normDeg(moonposition.Node(jde).Deg())
}

// meanApogee returns the mean lunar apogee ("Lilith"): the mean perigee
// turned by 180°, placed on the mean lunar orbit.
func meanApogee(jde float64) (lon, lat, dist float64) {
	T := (jde - base.J2000) / base.JulianCentury
	perigee := base.Horner(T, 83.3532465, 4069.0137287, -0.0103200, -1.0/80053, 1.0/18999000)
	lon = normDeg(perigee + 180)

	u := (lon - meanNode(jde)) * math.Pi / 180
	lat = math.Asin(math.Sin(lunarInclination*math.Pi/180)*math.Sin(u)) * 180 / math.Pi

	// mean apogee distance, 384400 km × (1 + e)
	dist = 384400 * (1 + 0.054900) / auKm
	return lon, lat, dist
}
