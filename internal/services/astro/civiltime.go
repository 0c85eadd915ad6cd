package astro

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"AstroChart/internal/domain/models"
	domsvc "AstroChart/internal/domain/service"
	applogger "AstroChart/pkg/logger"

	"github.com/soniakeys/meeus/v3/julian"
)

const civilLayout = "2006-01-02 15:04"

// Instant is the absolute moment of a chart.
type Instant struct {
	UTC time.Time
	// Zone is the IANA zone used for localization, empty when the civil time
	// was taken as UTC.
	Zone      string
	JulianDay float64
}

// CivilTimeResolver turns a local birth date and time into an Instant.
type CivilTimeResolver struct {
	zones  domsvc.TimeZoneLookup
	logger *applogger.Logger
}

// NewCivilTimeResolver builds a resolver. A nil lookup makes every
// resolution fall back to UTC.
func NewCivilTimeResolver(zones domsvc.TimeZoneLookup, l *applogger.Logger) *CivilTimeResolver {
	if l == nil {
		l = applogger.Nop()
	}
	return &CivilTimeResolver{zones: zones, logger: l}
}

// Resolve localizes date ("2006-01-02") and clock ("15:04") in the zone
// containing (lat, lng). A coordinate without a zone is treated as UTC.
func (r *CivilTimeResolver) Resolve(date, clock string, lat, lng float64) (Instant, error) {
	civil, err := time.Parse(civilLayout, date+" "+clock)
	if err != nil {
		return Instant{}, fmt.Errorf("%w: %q %q: %v", models.ErrInvalidDateTime, date, clock, err)
	}

	loc, zone := time.UTC, ""
	if r.zones != nil {
		if name, ok := r.zones.ZoneAt(lat, lng); ok {
			l, err := time.LoadLocation(name)
			if err != nil {
				r.logger.Warn("time zone not loadable, using UTC",
					applogger.String("zone", name),
					applogger.Error(err))
			} else {
				loc, zone = l, name
			}
		}
	}

	local := time.Date(civil.Year(), civil.Month(), civil.Day(), civil.Hour(), civil.Minute(), 0, 0, loc)
	utc := local.UTC()
	return Instant{UTC: utc, Zone: zone, JulianDay: JulianDay(utc)}, nil
}

// JulianDay returns the Julian day of a UTC time, with the time of day as
// (hour + minute/60 + second/3600) / 24.
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	return julian.CalendarGregorianToJD(t.Year(), int(t.Month()), float64(t.Day())+hours/24)
}
