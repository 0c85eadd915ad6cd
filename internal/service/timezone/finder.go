package timezone

import (
	"fmt"
	"math"
	"strings"

	domsvc "AstroChart/internal/domain/service"
	applogger "AstroChart/pkg/logger"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ringsaturn/tzf"
)

// Namer is the part of tzf.F the finder uses.
type Namer interface {
	GetTimezoneName(lng float64, lat float64) string
}

// tzf covers open ocean with nautical Etc/GMT±N zones; those count as no zone.
const nauticalPrefix = "Etc/"

// coordinates are memoized on a 1e-4° grid (about 11 m)
const gridScale = 1e4

type cell struct {
	lat, lng int64
}

// Option configures Finder.
type Option func(*Finder)

// WithNamer replaces the polygon finder.
func WithNamer(n Namer) Option {
	return func(f *Finder) {
		f.namer = n
	}
}

// WithCacheSize sets the number of memoized coordinates.
func WithCacheSize(n int) Option {
	return func(f *Finder) {
		f.cacheSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(f *Finder) {
		f.logger = l
	}
}

// Finder resolves IANA zones from coordinates with the embedded tzf polygons.
type Finder struct {
	namer     Namer
	memo      *lru.Cache[cell, string]
	cacheSize int
	logger    *applogger.Logger
}

// New builds a finder. Loading the default polygons takes a moment, so build
// one per process and share it.
func New(opts ...Option) (*Finder, error) {
	f := &Finder{cacheSize: 4096, logger: applogger.Nop()}
	for _, opt := range opts {
		opt(f)
	}

	if f.namer == nil {
		tf, err := tzf.NewDefaultFinder()
		if err != nil {
			return nil, fmt.Errorf("load tz polygons: %w", err)
		}
		f.namer = tf
	}

	memo, err := lru.New[cell, string](f.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("tz memo: %w", err)
	}
	f.memo = memo

	return f, nil
}

// ZoneAt returns the zone containing (lat, lng), or false when the point
// lies in no civil zone, such as open ocean.
func (f *Finder) ZoneAt(lat, lng float64) (string, bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return "", false
	}
	key := cell{lat: int64(math.Round(lat * gridScale)), lng: int64(math.Round(lng * gridScale))}
	if name, ok := f.memo.Get(key); ok {
		return name, name != ""
	}

	name := f.namer.GetTimezoneName(lng, lat)
	if strings.HasPrefix(name, nauticalPrefix) {
		name = ""
	}
	f.memo.Add(key, name)
	if name == "" {
		f.logger.Debug("no time zone at coordinate",
			applogger.Float64("lat", lat),
			applogger.Float64("lng", lng))
		return "", false
	}
	return name, true
}

var _ domsvc.TimeZoneLookup = (*Finder)(nil)
