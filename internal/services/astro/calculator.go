package astro

import (
	"context"
	"fmt"
	"math"

	"AstroChart/internal/domain/models"
	domsvc "AstroChart/internal/domain/service"
	applogger "AstroChart/pkg/logger"
)

// trackedBodies are read from the ephemeris in this order.
var trackedBodies = []domsvc.Body{
	domsvc.Sun,
	domsvc.Moon,
	domsvc.Mercury,
	domsvc.Venus,
	domsvc.Mars,
	domsvc.Jupiter,
	domsvc.Saturn,
	domsvc.Uranus,
	domsvc.Neptune,
	domsvc.Pluto,
	domsvc.Chiron,
	domsvc.MeanNode,
}

// Option configures Calculator.
type Option func(*Calculator)

// WithHouseSystem selects the house division. Placidus is the default.
func WithHouseSystem(h domsvc.HouseSystem) Option {
	return func(c *Calculator) {
		c.system = h
	}
}

// WithOrbs overrides the maximum orb of some aspect types.
func WithOrbs(orbs map[models.AspectType]float64) Option {
	return func(c *Calculator) {
		c.aspects = NewAspectClassifier(orbs)
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Calculator) {
		c.logger = l
	}
}

// Calculator computes natal charts. It holds no mutable state and is safe
// for concurrent use when its Ephemeris is.
type Calculator struct {
	ephemeris domsvc.Ephemeris
	resolver  *CivilTimeResolver
	aspects   *AspectClassifier
	system    domsvc.HouseSystem
	logger    *applogger.Logger
}

// NewCalculator wires a calculator to its ephemeris and time-zone lookup.
func NewCalculator(eph domsvc.Ephemeris, zones domsvc.TimeZoneLookup, opts ...Option) *Calculator {
	c := &Calculator{
		ephemeris: eph,
		aspects:   NewAspectClassifier(nil),
		system:    domsvc.Placidus,
		logger:    applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resolver = NewCivilTimeResolver(zones, c.logger)
	return c
}

// Aspects returns the classifier used by the calculator.
func (c *Calculator) Aspects() *AspectClassifier { return c.aspects }

// Compute builds the chart for a civil birth moment and place. Any ephemeris
// failure aborts the computation.
func (c *Calculator) Compute(ctx context.Context, in models.ChartInput) (models.Chart, error) {
	if err := ctx.Err(); err != nil {
		return models.Chart{}, err
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 ||
		math.IsNaN(in.Latitude) || math.IsNaN(in.Longitude) {
		return models.Chart{}, fmt.Errorf("%w: lat=%v lng=%v", models.ErrInvalidLocation, in.Latitude, in.Longitude)
	}

	inst, err := c.resolver.Resolve(in.Date, in.Time, in.Latitude, in.Longitude)
	if err != nil {
		return models.Chart{}, err
	}
	jd := inst.JulianDay

	bodies := make([]models.BodyPosition, 0, len(trackedBodies)+2)
	var northNode float64
	for _, b := range trackedBodies {
		pos, err := c.ephemeris.Position(jd, b)
		if err != nil {
			return models.Chart{}, fmt.Errorf("%w: %s: %w", models.ErrEphemeris, b, err)
		}
		if b == domsvc.MeanNode {
			northNode = Normalize(pos.Longitude)
		}
		bodies = append(bodies, newPosition(b.String(), models.PointBody, pos.Longitude, pos.Latitude, pos.LongitudeSpeed))
	}

	southNode := math.Mod(northNode+180, 360)
	bodies = append(bodies, newPosition(models.NameSouthNode, models.PointDerived, southNode, 0, 0))

	lilith, err := c.ephemeris.Position(jd, domsvc.MeanApogee)
	if err != nil {
		return models.Chart{}, fmt.Errorf("%w: %s: %w", models.ErrEphemeris, domsvc.MeanApogee, err)
	}
	bodies = append(bodies, newPosition(models.NameLilith, models.PointDerived, lilith.Longitude, lilith.Latitude, lilith.LongitudeSpeed))

	frame, err := c.ephemeris.Houses(jd, in.Latitude, in.Longitude, c.system)
	if err != nil {
		return models.Chart{}, fmt.Errorf("%w: %w", models.ErrHouseSystem, err)
	}
	if frame.System != 0 && frame.System != c.system {
		c.logger.Warn("house system fell back",
			applogger.String("requested", c.system.String()),
			applogger.String("used", frame.System.String()),
			applogger.Float64("latitude", in.Latitude))
	}

	houses := make([]models.HouseCusp, 12)
	var cusps [12]float64
	for i, cusp := range frame.Cusps {
		cusps[i] = Normalize(cusp)
		houses[i] = models.HouseCusp{Number: i + 1, Cusp: cusps[i], Sign: SignOf(cusps[i])}
	}

	for i := range bodies {
		house, ok := HouseOf(bodies[i].Longitude, cusps)
		if !ok {
			return models.Chart{}, fmt.Errorf("%w: no house for %s at %.6f", models.ErrHouseSystem, bodies[i].Name, bodies[i].Longitude)
		}
		bodies[i].House = &house
	}

	planets := make([]models.BodyPosition, 0, len(bodies)+2)
	planets = append(planets,
		newPosition(models.NameAscendant, models.PointAngle, frame.Ascendant, 0, 0),
		newPosition(models.NameMidheaven, models.PointAngle, frame.Midheaven, 0, 0),
	)
	planets = append(planets, bodies...)

	chart := models.Chart{
		Planets:     planets,
		Houses:      houses,
		HouseSystem: houseSystemName(frame.System, c.system),
		JulianDay:   jd,
		UTC:         inst.UTC,
		TimeZone:    inst.Zone,
	}
	chart.Aspects = c.aspects.Classify(aspectInput(chart.HouseBearing()))

	c.logger.Debug("chart computed",
		applogger.Float64("jd", jd),
		applogger.String("zone", inst.Zone),
		applogger.Int("aspects", len(chart.Aspects)))

	return chart, nil
}

func newPosition(name string, kind models.PointKind, lon, lat, speed float64) models.BodyPosition {
	lon = Normalize(lon)
	return models.BodyPosition{
		Name:      name,
		Kind:      kind,
		Longitude: lon,
		Latitude:  lat,
		Speed:     speed,
		Sign:      SignOf(lon),
		Degree:    DegreeInSign(lon),
	}
}

func aspectInput(points []models.BodyPosition) []NamedLongitude {
	out := make([]NamedLongitude, len(points))
	for i, p := range points {
		out[i] = NamedLongitude{Name: p.Name, Longitude: p.Longitude}
	}
	return out
}

func houseSystemName(used, requested domsvc.HouseSystem) string {
	if used == 0 {
		return requested.String()
	}
	return used.String()
}

var _ domsvc.ChartCalculator = (*Calculator)(nil)
