package ephemeris

import (
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/deltat"
)

// Table 10.A spans 1620–2010; outside it the Meeus polynomials take over.
const (
	deltaTTableFirst = 1620
	deltaTTableLast  = 2010
)

// deltaT returns TT − UT in seconds at Julian day jd.
func deltaT(jd float64) float64 {
	y := base.JDEToJulianYear(jd)
	switch {
	case y < deltaTTableFirst:
		return float64(deltat.Poly948to1600(y))
	case y < deltaTTableLast:
		return float64(deltat.Interp10A(jd))
	default:
		return float64(deltat.PolyAfter2000(y))
	}
}
