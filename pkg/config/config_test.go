package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, "placidus", c.Ephemeris.HouseSystem)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL)
	assert.Equal(t, "astro.chart-requests", c.Kafka.RequestTopic)
	assert.Equal(t, 1.0, c.Geocoder.RPS)
	assert.NotEmpty(t, c.Auth.JWTSecret)
}

func TestParse_OverridesDefaults(t *testing.T) {
	raw := `
environment: staging
server:
  port: 9090
  read_timeout: 3s
ephemeris:
  house_system: porphyry
  orbs:
    sextile: 4
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
`
	c, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 3*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, "porphyry", c.Ephemeris.HouseSystem)
	assert.Equal(t, map[string]float64{"sextile": 4}, c.Ephemeris.Orbs)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"bad port":       "server:\n  port: 70000\n",
		"house system":   "ephemeris:\n  house_system: koch\n",
		"orb":            "ephemeris:\n  orbs:\n    trine: 30\n",
		"kafka brokers":  "kafka:\n  enabled: true\n",
		"production dsn": "environment: production\nauth:\n  jwt_secret: s\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0o600))

	t.Setenv("PORT", "8123")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/astro?sslmode=disable")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, 8123, c.Server.Port)
	assert.Equal(t, "postgres://u:p@db/astro?sslmode=disable", c.Postgres.DSN)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "s3cret", c.Auth.JWTSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ExampleFile(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "placidus", c.Ephemeris.HouseSystem)
	assert.Equal(t, 6.0, c.Ephemeris.Orbs["sextile"])
	assert.Equal(t, "astro:jobs", c.Queue.Name)
	assert.False(t, c.Kafka.Enabled)
}
