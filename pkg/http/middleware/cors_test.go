package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestMatchOrigin(t *testing.T) {
	allow := []string{"https://astro.example", "https://*.astro.example"}

	cases := []struct {
		origin string
		ok     bool
	}{
		{"https://astro.example", true},
		{"https://app.astro.example", true},
		{"http://app.astro.example", false},
		{"https://evil.example", false},
		{"https://.astro.example", false},
		{"", false},
	}
	for _, tc := range cases {
		_, ok := matchOrigin(allow, tc.origin)
		assert.Equal(t, tc.ok, ok, tc.origin)
	}

	v, ok := matchOrigin(nil, "")
	assert.True(t, ok)
	assert.Equal(t, "*", v)
}

func TestCORS_Preflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: []string{"https://astro.example"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderAuthorization},
		MaxAge:       600,
	}))
	e.GET("/api/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodOptions, "/api/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://astro.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))

	req = httptest.NewRequest(http.MethodGet, "/api/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://other.example")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, echo.HeaderOrigin, rec.Header().Get(echo.HeaderVary))
}
