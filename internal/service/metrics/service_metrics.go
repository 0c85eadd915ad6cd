package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	GeocodeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "astro",
			Subsystem: "geocoder",
			Name:      "latency_seconds",
			Help:      "Latency of upstream geocoding requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astro",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by cache name and result",
		},
		[]string{"cache", "result"},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astro",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client limiter",
		},
		[]string{"route"},
	)
)

// Register adds the service collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(GeocodeLatency, CacheLookups, RateLimited)
	})
}

// CacheResult records a cache hit or miss.
func CacheResult(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
