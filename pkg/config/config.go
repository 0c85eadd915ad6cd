package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	xutil "AstroChart/pkg/util"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	App         struct {
		Name    string `yaml:"name" default:"astrochart"`
		Version string `yaml:"version" default:"dev"`
	} `yaml:"app"`
	Server struct {
		Port            int           `yaml:"port" default:"8000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
		// Collector aggregates repeated errors and ships summaries to Kafka.
		Collector struct {
			Enabled       bool          `yaml:"enabled"`
			Topic         string        `yaml:"topic" default:"astro.logs"`
			FlushInterval time.Duration `yaml:"flush_interval" default:"30s"`
		} `yaml:"collector"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Ephemeris struct {
		VSOP87Dir   string             `yaml:"vsop87_dir"`
		HouseSystem string             `yaml:"house_system" default:"placidus"`
		Orbs        map[string]float64 `yaml:"orbs"`
		ZoneCache   int                `yaml:"zone_cache" default:"4096"`
	} `yaml:"ephemeris"`
	Postgres struct {
		DSN             string        `yaml:"dsn"`
		MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
		AutoMigrate     bool          `yaml:"auto_migrate" default:"true"`
	} `yaml:"postgres"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
	} `yaml:"redis"`
	Cache struct {
		MemorySize  int           `yaml:"memory_size" default:"1000"`
		MemoryTTL   time.Duration `yaml:"memory_ttl" default:"5m"`
		ChartTTL    time.Duration `yaml:"chart_ttl" default:"1h"`
		PreviewTTL  time.Duration `yaml:"preview_ttl" default:"10m"`
		LocationTTL time.Duration `yaml:"location_ttl" default:"24h"`
	} `yaml:"cache"`
	Queue struct {
		Name        string        `yaml:"name" default:"astro:jobs"`
		Workers     int           `yaml:"workers" default:"2"`
		Concurrency int           `yaml:"concurrency" default:"4"`
		MaxRetries  int           `yaml:"max_retries" default:"3"`
		PollTimeout time.Duration `yaml:"poll_timeout" default:"5s"`
	} `yaml:"queue"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		EventsTopic  string   `yaml:"events_topic" default:"astro.chart-events"`
		RequestTopic string   `yaml:"request_topic" default:"astro.chart-requests"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"astrochart"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"100"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"astro.chart-requests.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"astro"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		BatchSize        int           `yaml:"batch_size" default:"512"`
		BatchTimeout     time.Duration `yaml:"batch_timeout" default:"2s"`
	} `yaml:"clickhouse"`
	Geocoder struct {
		BaseURL   string        `yaml:"base_url" default:"https://nominatim.openstreetmap.org"`
		UserAgent string        `yaml:"user_agent" default:"astrochart/1.0"`
		Timeout   time.Duration `yaml:"timeout" default:"10s"`
		RPS       float64       `yaml:"rps" default:"1"`
		Retries   uint64        `yaml:"retries" default:"2"`
	} `yaml:"geocoder"`
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl" default:"24h"`
		Issuer    string        `yaml:"issuer" default:"astrochart"`
	} `yaml:"auth"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		RPS     float64 `yaml:"rps" default:"10"`
		Burst   int     `yaml:"burst" default:"20"`
	} `yaml:"ratelimit"`
}

// Default returns a configuration populated only from struct defaults.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file in the working directory is read first when present.
// An empty path starts from the defaults.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var (
		c   *Config
		err error
	)
	if path == "" {
		c = Default()
	} else if c, err = Load(path); err != nil {
		return nil, err
	}

	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = xutil.SplitNonEmpty(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("VSOP87_DIR"); v != "" {
		c.Ephemeris.VSOP87Dir = v
	}
	if v := os.Getenv("NOMINATIM_URL"); v != "" {
		c.Geocoder.BaseURL = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = xutil.SplitNonEmpty(v, ",")
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Ephemeris.HouseSystem) {
	case "placidus", "porphyry", "equal", "whole_sign", "p", "o", "e", "w":
	default:
		return fmt.Errorf("ephemeris.house_system '%s' is not supported", c.Ephemeris.HouseSystem)
	}
	for name, orb := range c.Ephemeris.Orbs {
		if orb <= 0 || orb > 15 {
			return fmt.Errorf("ephemeris.orbs.%s must be in (0, 15], got %v", name, orb)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Environment == "production" {
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required in production")
		}
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in production")
		}
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = "dev-secret-change-me"
	}
	return nil
}
