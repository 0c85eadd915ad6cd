package ephemeris

import (
	"fmt"
	"math"
	"time"

	"AstroChart/internal/domain/models"
	domsvc "AstroChart/internal/domain/service"
	applogger "AstroChart/pkg/logger"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/solar"
)

const (
	bodyMercury = iota
	bodyVenus
	bodyEarth
	bodyMars
	bodyJupiter
	bodySaturn
	bodyUranus
	bodyNeptune
	bodyPluto
)

var planetBodies = map[domsvc.Body]int{
	domsvc.Mercury: bodyMercury,
	domsvc.Venus:   bodyVenus,
	domsvc.Mars:    bodyMars,
	domsvc.Jupiter: bodyJupiter,
	domsvc.Saturn:  bodySaturn,
	domsvc.Uranus:  bodyUranus,
	domsvc.Neptune: bodyNeptune,
	domsvc.Pluto:   bodyPluto,
}

var vsopBodies = map[int]int{
	bodyMercury: pp.Mercury,
	bodyVenus:   pp.Venus,
	bodyEarth:   pp.Earth,
	bodyMars:    pp.Mars,
	bodyJupiter: pp.Jupiter,
	bodySaturn:  pp.Saturn,
	bodyUranus:  pp.Uranus,
	bodyNeptune: pp.Neptune,
}

const (
	// MinJD and MaxJD bound the supported range (1600-01-01 .. 2400-01-01).
	MinJD = 2305447.5
	MaxJD = 2597641.5

	lightTimeDays = 0.0057755183 // days per AU
	aberration    = 20.49552 / 3600
	auKm          = 149597870.7
	speedStep     = 0.5 // days
)

// Option configures Engine.
type Option func(*Engine)

// WithVSOP87 makes the engine load VSOP87B files from dir for the Sun and
// the major planets instead of using mean Keplerian elements.
func WithVSOP87(dir string) Option {
	return func(e *Engine) {
		e.vsopDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine evaluates apparent geocentric positions and house cusps.
// After construction it is read-only and safe for concurrent use.
type Engine struct {
	vsopDir string
	vsop    map[int]*pp.V87Planet
	logger  *applogger.Logger
}

// NewEngine builds an engine. With WithVSOP87 every planet file must load.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{logger: applogger.Nop()}
	for _, opt := range opts {
		opt(e)
	}

	if e.vsopDir != "" {
		e.vsop = make(map[int]*pp.V87Planet, len(vsopBodies))
		for body, id := range vsopBodies {
			p, err := pp.LoadPlanetPath(id, e.vsopDir)
			if err != nil {
				return nil, fmt.Errorf("load vsop87 body %d: %w", id, err)
			}
			e.vsop[body] = p
		}
		e.logger.Info("ephemeris: vsop87 loaded", applogger.String("dir", e.vsopDir))
	} else {
		e.logger.Info("ephemeris: using mean orbital elements",
			applogger.Int("valid_from", keplerValidFrom),
			applogger.Int("valid_to", keplerValidTo))
	}

	return e, nil
}

// Source names the planetary theory in use.
func (e *Engine) Source() string {
	if e.vsop != nil {
		return "vsop87"
	}
	return "kepler"
}

// Position returns the apparent geocentric ecliptic position of body at the
// Julian day jd (UT). Speeds are central differences over one day.
func (e *Engine) Position(jd float64, body domsvc.Body) (domsvc.EclipticPosition, error) {
	if err := checkRange(jd); err != nil {
		return domsvc.EclipticPosition{}, err
	}
	jde := jd + deltaT(jd)/86400

	lon, lat, dist, err := e.apparent(jde, body)
	if err != nil {
		return domsvc.EclipticPosition{}, err
	}
	lon0, lat0, dist0, err := e.apparent(jde-speedStep, body)
	if err != nil {
		return domsvc.EclipticPosition{}, err
	}
	lon1, lat1, dist1, err := e.apparent(jde+speedStep, body)
	if err != nil {
		return domsvc.EclipticPosition{}, err
	}

	return domsvc.EclipticPosition{
		Longitude:      lon,
		Latitude:       lat,
		Distance:       dist,
		LongitudeSpeed: angleDiff(lon1, lon0) / (2 * speedStep),
		LatitudeSpeed:  (lat1 - lat0) / (2 * speedStep),
		DistanceSpeed:  (dist1 - dist0) / (2 * speedStep),
	}, nil
}

// Houses divides the ecliptic at jd (UT) for the given geographic place.
func (e *Engine) Houses(jd, lat, lng float64, system domsvc.HouseSystem) (domsvc.HouseFrame, error) {
	if err := checkRange(jd); err != nil {
		return domsvc.HouseFrame{}, err
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domsvc.HouseFrame{}, fmt.Errorf("%w: lat=%v lng=%v", models.ErrInvalidLocation, lat, lng)
	}
	jde := jd + deltaT(jd)/86400
	armc := normDeg(apparentSiderealDeg(jd) + lng)
	eps := trueObliquity(jde)

	frame, err := divideHouses(armc, eps, lat, system)
	if err != nil {
		return domsvc.HouseFrame{}, err
	}
	if frame.System != system {
		e.logger.Debug("house system fallback",
			applogger.String("requested", system.String()),
			applogger.String("used", frame.System.String()),
			applogger.Float64("latitude", lat))
	}
	return frame, nil
}

func (e *Engine) apparent(jde float64, body domsvc.Body) (lon, lat, dist float64, err error) {
	dpsi, _ := nutation.Nutation(jde)
	T := (jde - base.J2000) / base.JulianCentury

	switch body {
	case domsvc.Sun:
		ex, ey, ez := e.earth(jde)
		lon, lat, dist = rectToSpherical(-ex, -ey, -ez)
		lon += -aberration / dist
	case domsvc.Moon:
		lon, lat, dist = moonPosition(jde)
	case domsvc.MeanNode:
		lon, lat, dist = meanNode(jde), 0, 0
	case domsvc.MeanApogee:
		lon, lat, dist = meanApogee(jde)
	case domsvc.Chiron:
		lon, lat, dist, err = e.geocentric(jde, func(t float64) (float64, float64, float64, error) {
			x, y, z, err := heliocentricChiron(t)
			if err != nil {
				return 0, 0, 0, err
			}
			l, b, r := rectToSpherical(x, y, z)
			return precessLongitude(l, (t-base.J2000)/base.JulianCentury), b, r, nil
		})
		if err != nil {
			return 0, 0, 0, err
		}
		lon = e.annualAberration(lon, lat, T)
	default:
		planet, ok := planetBodies[body]
		if !ok {
			return 0, 0, 0, fmt.Errorf("%w: unsupported body %s", models.ErrEphemeris, body)
		}
		lon, lat, dist, err = e.geocentric(jde, func(t float64) (float64, float64, float64, error) {
			return e.heliocentric(planet, t)
		})
		if err != nil {
			return 0, 0, 0, err
		}
		lon = e.annualAberration(lon, lat, T)
	}

	return normDeg(lon + dpsi.Deg()), lat, dist, nil
}

// geocentric subtracts the Earth at jde from the body at jde − τ, where τ is
// the light time, iterating until τ settles.
func (e *Engine) geocentric(jde float64, helio func(float64) (float64, float64, float64, error)) (lon, lat, dist float64, err error) {
	ex, ey, ez := e.earth(jde)
	tau := 0.0
	var x, y, z float64
	for i := 0; i < 3; i++ {
		l, b, r, err := helio(jde - tau)
		if err != nil {
			return 0, 0, 0, err
		}
		px, py, pz := sphericalToRect(l, b, r)
		x, y, z = px-ex, py-ey, pz-ez
		dist = math.Sqrt(x*x + y*y + z*z)
		tau = lightTimeDays * dist
	}
	lon, lat, _ = rectToSpherical(x, y, z)
	return lon, lat, dist, nil
}

// heliocentric returns the body's heliocentric ecliptic position of date.
func (e *Engine) heliocentric(body int, jde float64) (lon, lat, r float64, err error) {
	T := (jde - base.J2000) / base.JulianCentury
	if p, ok := e.vsop[body]; ok {
		L, B, R := p.Position(jde)
		return L.Deg(), B.Deg(), R, nil
	}
	if body == bodyPluto && jde >= plutoMinJDE && jde <= plutoMaxJDE {
		l, b, r := pluto.Heliocentric(jde)
		return precessLongitude(l.Deg(), T), b.Deg(), r, nil
	}
	x, y, z, err := heliocentricKepler(planetElements[body], T)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: kepler: %w", models.ErrEphemeris, err)
	}
	l, b, r := rectToSpherical(x, y, z)
	return precessLongitude(l, T), b, r, nil
}

// earth returns the heliocentric rectangular ecliptic coordinates of the
// Earth, equinox of date.
func (e *Engine) earth(jde float64) (x, y, z float64) {
	if p, ok := e.vsop[bodyEarth]; ok {
		L, B, R := p.Position(jde)
		return sphericalToRect(L.Deg(), B.Deg(), R)
	}
	T := (jde - base.J2000) / base.JulianCentury
	s, _ := solar.True(T)
	return sphericalToRect(s.Deg()+180, 0, solar.Radius(T))
}

// annualAberration applies the aberration of light to a planet's longitude.
func (e *Engine) annualAberration(lon, lat, T float64) float64 {
	s, _ := solar.True(T)
	cb := math.Cos(lat * math.Pi / 180)
	if cb < 1e-9 {
		return lon
	}
	return lon - aberration*math.Cos((s.Deg()-lon)*math.Pi/180)/cb
}

// Pluto's series in meeus/pluto holds for 1885–2099.
const (
	plutoMinJDE = 2409543.5
	plutoMaxJDE = 2488069.5
)

func checkRange(jd float64) error {
	if math.IsNaN(jd) || jd < MinJD || jd > MaxJD {
		return fmt.Errorf("%w: jd %.5f (%s)", models.ErrOutOfRange, jd, jdString(jd))
	}
	return nil
}

func jdString(jd float64) string {
	if math.IsNaN(jd) || math.IsInf(jd, 0) {
		return "invalid"
	}
	return julian.JDToTime(jd).Format(time.DateOnly)
}

// angleDiff returns a − b wrapped to (−180, 180].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

var _ domsvc.Ephemeris = (*Engine)(nil)
