package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"AstroChart/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kyivResponse = `[
	{"place_id": 1, "display_name": "Київ, Україна", "lat": "50.4500336", "lon": "30.5241361"},
	{"place_id": 2, "display_name": "Kyiv Oblast", "lat": "50.0529", "lon": "30.7667"},
	{"place_id": 3, "display_name": "broken"}
]`

func TestNominatim_Search(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Kyiv", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "astro-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(kyivResponse))
	}))
	defer srv.Close()

	g := NewNominatim(Config{BaseURL: srv.URL, UserAgent: "astro-test", RPS: 100}, WithCache(cache.NewMemoryCache()))

	locs, err := g.Search(context.Background(), "  Kyiv ", 10)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Київ, Україна", locs[0].DisplayName)
	assert.InDelta(t, 50.4500336, locs[0].Latitude, 1e-9)
	assert.InDelta(t, 30.5241361, locs[0].Longitude, 1e-9)

	_, err = g.Search(context.Background(), "kyiv", 10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "second lookup served from cache")
}

func TestNominatim_EmptyQuery(t *testing.T) {
	g := NewNominatim(Config{BaseURL: "http://127.0.0.1:1"})
	locs, err := g.Search(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestNominatim_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	g := NewNominatim(Config{BaseURL: srv.URL, RPS: 100, Retries: 3})
	_, err := g.Search(context.Background(), "Lviv", 3)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNominatim_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewNominatim(Config{BaseURL: srv.URL, RPS: 100, Retries: 2})
	locs, err := g.Search(context.Background(), "Atlantis", 3)
	require.NoError(t, err)
	assert.Empty(t, locs)
	assert.Equal(t, int32(2), calls.Load())
}

func TestParseResults(t *testing.T) {
	_, err := parseResults([]byte(`{"error":"x"}`), 10)
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = parseResults([]byte(`not json`), 10)
	assert.ErrorIs(t, err, ErrUpstream)

	locs, err := parseResults([]byte(kyivResponse), 1)
	require.NoError(t, err)
	assert.Len(t, locs, 1)
}
