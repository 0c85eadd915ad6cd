package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/unit"
)

// keplerElements are mean orbital elements referred to the J2000 ecliptic
// and equinox, with rates per Julian century.
type keplerElements struct {
	a, e, i, l, peri, node                   float64 // AU, -, deg, deg, deg, deg
	aDot, eDot, iDot, lDot, periDot, nodeDot float64
}

// Calendar years over which planetElements hold to a few arcminutes. Outside
// them positions drift; load VSOP87 for dates far from the present.
const (
	keplerValidFrom = 1800
	keplerValidTo   = 2050
)

// Approximate planetary elements (Standish, JPL), valid 1800–2050.
var planetElements = map[int]keplerElements{
	bodyMercury: {0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081},
	bodyVenus: {0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418},
	bodyEarth: {1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
		0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0},
	bodyMars: {1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343},
	bodyJupiter: {5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106},
	bodySaturn: {9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794},
	bodyUranus: {19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589},
	bodyNeptune: {30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664},
	bodyPluto: {39.48211675, 0.24882730, 17.14001206, 238.92903833, 224.06891629, 110.30393684,
		-0.00031596, 0.00005170, 0.00004818, 145.20780515, -0.04062942, -0.01183482},
}

// chironElements are osculating elements of 2060 Chiron (J2000 ecliptic).
// Mean longitude is derived from the perihelion passage of 1996-02-14.
var chironElements = struct {
	a, e, i, peri, node, perihelionJDE float64
}{
	a:             13.648,
	e:             0.3789,
	i:             6.935,
	peri:          339.53,
	node:          209.37,
	perihelionJDE: 2450128.1,
}

const gaussK = 0.01720209895 // rad/day

// heliocentricKepler solves the orbit at T (centuries from J2000, TT) and
// returns heliocentric ecliptic rectangular coordinates, J2000.
func heliocentricKepler(el keplerElements, T float64) (x, y, z float64, err error) {
	a := el.a + el.aDot*T
	e := el.e + el.eDot*T
	incl := el.i + el.iDot*T
	l := el.l + el.lDot*T
	peri := el.peri + el.periDot*T
	node := el.node + el.nodeDot*T

	M := normDeg(l - peri)
	return orbitToEcliptic(a, e, incl, peri-node, node, M)
}

// heliocentricChiron evaluates Chiron's orbit at jde.
func heliocentricChiron(jde float64) (x, y, z float64, err error) {
	el := chironElements
	n := gaussK / math.Pow(el.a, 1.5) * 180 / math.Pi // deg/day
	M := normDeg(n * (jde - el.perihelionJDE))
	return orbitToEcliptic(el.a, el.e, el.i, el.peri, el.node, M)
}

// orbitToEcliptic places a body on its orbit. Angles in degrees.
func orbitToEcliptic(a, e, incl, argPeri, node, meanAnomaly float64) (x, y, z float64, err error) {
	E, err := kepler.Kepler2(e, unit.AngleFromDeg(meanAnomaly), 10)
	if err != nil {
		return 0, 0, 0, err
	}
	nu := kepler.True(E, e)
	r := kepler.Radius(E, e, a)

	u := argPeri*math.Pi/180 + nu.Rad()
	Ω := node * math.Pi / 180
	i := incl * math.Pi / 180

	su, cu := math.Sincos(u)
	sΩ, cΩ := math.Sincos(Ω)
	si, ci := math.Sincos(i)

	x = r * (cΩ*cu - sΩ*su*ci)
	y = r * (sΩ*cu + cΩ*su*ci)
	z = r * su * si
	return x, y, z, nil
}

// precessLongitude moves a J2000 ecliptic longitude to the mean equinox of
// date (general precession in longitude, rotation about the ecliptic pole).
func precessLongitude(lon, T float64) float64 {
	return lon + 1.396971*T + 0.0003086*T*T
}

func rectToSpherical(x, y, z float64) (lon, lat, r float64) {
	r = math.Sqrt(x*x + y*y + z*z)
	lon = normDeg(math.Atan2(y, x) * 180 / math.Pi)
	lat = math.Atan2(z, math.Hypot(x, y)) * 180 / math.Pi
	return lon, lat, r
}

func sphericalToRect(lon, lat, r float64) (x, y, z float64) {
	sl, cl := math.Sincos(lon * math.Pi / 180)
	sb, cb := math.Sincos(lat * math.Pi / 180)
	return r * cb * cl, r * cb * sl, r * sb
}

func normDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}
