package astro

import (
	"math"

	"AstroChart/internal/domain/models"
)

// Normalize maps a longitude into [0, 360).
func Normalize(lon float64) float64 {
	l := math.Mod(lon, 360)
	if l < 0 {
		l += 360
	}
	// -1e-15 + 360 rounds to 360
	if l >= 360 {
		l = 0
	}
	return l
}

// SignOf returns the sign containing the longitude.
func SignOf(lon float64) models.Sign {
	return models.Sign(int(math.Floor(Normalize(lon)/30)) % 12)
}

// DegreeInSign returns the longitude's offset from the start of its sign, in [0, 30).
func DegreeInSign(lon float64) float64 {
	return math.Mod(Normalize(lon), 30)
}

// HouseOf finds the house whose arc [cusp[i], cusp[i+1]) contains lon.
// Arcs live on a coordinate that wraps once: an upper cusp numerically below
// its lower cusp is lifted by 360°, and so is a longitude below the lower cusp.
func HouseOf(lon float64, cusps [12]float64) (int, bool) {
	lon = Normalize(lon)
	for i := 0; i < 12; i++ {
		cur := cusps[i]
		next := cusps[(i+1)%12]
		if next < cur {
			next += 360
		}
		l := lon
		if l < cur {
			l += 360
		}
		if cur <= l && l < next {
			return i + 1, true
		}
	}
	return 0, false
}
