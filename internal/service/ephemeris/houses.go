package ephemeris

import (
	"fmt"
	"math"

	"AstroChart/internal/domain/models"
	domsvc "AstroChart/internal/domain/service"

	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
)

const (
	deg = math.Pi / 180
	rad = 180 / math.Pi

	placidusMaxIter = 100
	placidusEpsilon = 1e-10
)

// apparentSiderealDeg is Greenwich apparent sidereal time in degrees.
func apparentSiderealDeg(jd float64) float64 {
	// unit.Time is in seconds of time; 240 s = 1°
	return normDeg(float64(sidereal.Apparent(jd)) / 240)
}

// trueObliquity is the obliquity of the ecliptic including nutation, degrees.
func trueObliquity(jde float64) float64 {
	_, deps := nutation.Nutation(jde)
	return nutation.MeanObliquity(jde).Deg() + deps.Deg()
}

// midheaven is the ecliptic longitude culminating at the given RAMC.
func midheaven(armc, eps float64) float64 {
	return normDeg(math.Atan2(math.Sin(armc*deg), math.Cos(armc*deg)*math.Cos(eps*deg)) * rad)
}

// ascendant is the ecliptic longitude rising in the east.
func ascendant(armc, eps, lat float64) float64 {
	y := math.Cos(armc * deg)
	x := -(math.Sin(armc*deg)*math.Cos(eps*deg) + math.Tan(lat*deg)*math.Sin(eps*deg))
	return normDeg(math.Atan2(y, x) * rad)
}

// eclipticFromRA returns the ecliptic longitude with right ascension ra.
func eclipticFromRA(ra, eps float64) float64 {
	return normDeg(math.Atan2(math.Sin(ra*deg), math.Cos(ra*deg)*math.Cos(eps*deg)) * rad)
}

// divideHouses computes cusps from RAMC, true obliquity and geographic latitude.
func divideHouses(armc, eps, lat float64, system domsvc.HouseSystem) (domsvc.HouseFrame, error) {
	if math.Abs(lat) >= 90 {
		return domsvc.HouseFrame{}, fmt.Errorf("%w: latitude %v at the pole", models.ErrHouseSystem, lat)
	}
	frame := domsvc.HouseFrame{
		Ascendant: ascendant(armc, eps, lat),
		Midheaven: midheaven(armc, eps),
		ARMC:      armc,
		System:    system,
	}

	switch system {
	case domsvc.Placidus:
		cusps, ok := placidus(armc, eps, lat, frame.Ascendant, frame.Midheaven)
		if !ok {
			frame.System = domsvc.Porphyry
			frame.Cusps = porphyry(frame.Ascendant, frame.Midheaven)
			break
		}
		frame.Cusps = cusps
	case domsvc.Porphyry:
		frame.Cusps = porphyry(frame.Ascendant, frame.Midheaven)
	case domsvc.Equal:
		for i := range frame.Cusps {
			frame.Cusps[i] = normDeg(frame.Ascendant + float64(i)*30)
		}
	case domsvc.WholeSign:
		start := math.Floor(frame.Ascendant/30) * 30
		for i := range frame.Cusps {
			frame.Cusps[i] = normDeg(start + float64(i)*30)
		}
	default:
		return domsvc.HouseFrame{}, fmt.Errorf("%w: unsupported house system %s", models.ErrHouseSystem, system)
	}
	return frame, nil
}

// placidus trisects the diurnal and nocturnal semi-arcs. It reports false
// where the semi-arcs are undefined (circumpolar ecliptic degrees).
func placidus(armc, eps, lat, asc, mc float64) ([12]float64, bool) {
	var cusps [12]float64
	if math.Abs(lat) >= 90-eps {
		return cusps, false
	}

	tanLat := math.Tan(lat * deg)
	sinEps := math.Sin(eps * deg)

	cusp := func(f float64, above bool) (float64, bool) {
		ra := armc + 90*f
		if !above {
			ra = armc + 180 - 90*f
		}
		lon := eclipticFromRA(ra, eps)
		for i := 0; i < placidusMaxIter; i++ {
			decl := math.Asin(sinEps * math.Sin(lon*deg))
			x := tanLat * math.Tan(decl)
			if math.Abs(x) > 1 {
				return 0, false
			}
			ad := math.Asin(x) * rad
			if above {
				ra = armc + f*(90+ad)
			} else {
				ra = armc + 180 - f*(90-ad)
			}
			next := eclipticFromRA(ra, eps)
			if math.Abs(angleDiff(next, lon)) < placidusEpsilon {
				return next, true
			}
			lon = next
		}
		return lon, true
	}

	var ok bool
	if cusps[10], ok = cusp(1.0/3, true); !ok {
		return cusps, false
	}
	if cusps[11], ok = cusp(2.0/3, true); !ok {
		return cusps, false
	}
	if cusps[1], ok = cusp(2.0/3, false); !ok {
		return cusps, false
	}
	if cusps[2], ok = cusp(1.0/3, false); !ok {
		return cusps, false
	}
	cusps[0] = asc
	cusps[9] = mc
	cusps[3] = normDeg(mc + 180)
	cusps[6] = normDeg(asc + 180)
	cusps[4] = normDeg(cusps[10] + 180)
	cusps[5] = normDeg(cusps[11] + 180)
	cusps[7] = normDeg(cusps[1] + 180)
	cusps[8] = normDeg(cusps[2] + 180)
	return cusps, true
}

// porphyry trisects each quadrant between the angles along the ecliptic.
func porphyry(asc, mc float64) [12]float64 {
	var cusps [12]float64
	ic := normDeg(mc + 180)
	dsc := normDeg(asc + 180)

	q1 := normDeg(ic - asc)
	q2 := normDeg(dsc - ic)

	cusps[0] = asc
	cusps[1] = normDeg(asc + q1/3)
	cusps[2] = normDeg(asc + 2*q1/3)
	cusps[3] = ic
	cusps[4] = normDeg(ic + q2/3)
	cusps[5] = normDeg(ic + 2*q2/3)
	for i := 6; i < 12; i++ {
		cusps[i] = normDeg(cusps[i-6] + 180)
	}
	return cusps
}
