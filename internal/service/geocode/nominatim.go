// Package geocode resolves place names to coordinates through a
// Nominatim-compatible search API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	"AstroChart/internal/service/metrics"
	"AstroChart/pkg/cache"
	xhttp "AstroChart/pkg/http"
	applogger "AstroChart/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// ErrUpstream wraps failures of the geocoding service.
var ErrUpstream = errors.New("geocoder unavailable")

const maxResults = 10

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RPS       float64
	Retries   uint64
	CacheTTL  time.Duration
}

// Nominatim searches places over the public Nominatim API. Requests are
// throttled client side and results cached by normalized query.
type Nominatim struct {
	cfg     Config
	client  *xhttp.Client
	limiter *rate.Limiter
	cache   cache.Service
	logger  *applogger.Logger
}

var _ domrepo.Geocoder = (*Nominatim)(nil)

type Option func(*Nominatim)

// WithCache enables result caching.
func WithCache(c cache.Service) Option {
	return func(n *Nominatim) { n.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(n *Nominatim) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *xhttp.Client) Option {
	return func(n *Nominatim) { n.client = c }
}

func NewNominatim(cfg Config, opts ...Option) *Nominatim {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "astrochart/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	n := &Nominatim{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		logger:  applogger.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.client == nil {
		n.client = xhttp.NewClient(
			xhttp.WithTimeout(cfg.Timeout),
			xhttp.WithHeader("User-Agent", cfg.UserAgent),
			xhttp.WithHeader("Accept", "application/json"),
		)
	}
	return n
}

// Search returns up to limit places matching query. An unknown place is
// an empty result, not an error.
func (n *Nominatim) Search(ctx context.Context, query string, limit int) ([]models.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Location{}, nil
	}
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	if n.cache == nil {
		return n.fetch(ctx, query, limit)
	}
	key := cache.GenerateKey("geo", cache.HashKey(strings.ToLower(query), strconv.Itoa(limit)))
	locs, hit, err := cache.GetOrLoad(ctx, n.cache, key, n.cfg.CacheTTL, func(ctx context.Context) ([]models.Location, error) {
		return n.fetch(ctx, query, limit)
	})
	metrics.CacheResult("geocode", hit)
	return locs, err
}

func (n *Nominatim) fetch(ctx context.Context, query string, limit int) ([]models.Location, error) {
	start := time.Now()
	var body []byte
	op := func() error {
		if err := n.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := n.client.SendAndParse(ctx, &xhttp.RequestOptions{
			URL: strings.TrimRight(n.cfg.BaseURL, "/") + "/search",
			QueryParams: url.Values{
				"q":              {query},
				"format":         {"json"},
				"limit":          {strconv.Itoa(limit)},
				"addressdetails": {"0"},
			},
		}, &body)
		var se *xhttp.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), n.cfg.Retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		metrics.GeocodeLatency.WithLabelValues("error").Observe(time.Since(start).Seconds())
		n.logger.Warn("geocode request failed", applogger.String("query", query), applogger.Error(err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	metrics.GeocodeLatency.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	return parseResults(body, limit)
}

func parseResults(body []byte, limit int) ([]models.Location, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed response", ErrUpstream)
	}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: expected an array", ErrUpstream)
	}

	out := make([]models.Location, 0, limit)
	for _, item := range res.Array() {
		lat, lon := item.Get("lat"), item.Get("lon")
		if !lat.Exists() || !lon.Exists() {
			continue
		}
		out = append(out, models.Location{
			DisplayName: item.Get("display_name").String(),
			Latitude:    lat.Float(),
			Longitude:   lon.Float(),
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
