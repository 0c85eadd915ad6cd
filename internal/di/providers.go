package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"AstroChart/internal/domain/models"
	"AstroChart/internal/domain/repository"
	domsvc "AstroChart/internal/domain/service"
	"AstroChart/internal/handler/api"
	"AstroChart/internal/handler/ws"
	mid "AstroChart/internal/middleware"
	internalrepo "AstroChart/internal/repository"
	"AstroChart/internal/repository/migrations"
	"AstroChart/internal/service/auth"
	"AstroChart/internal/service/ephemeris"
	"AstroChart/internal/service/geocode"
	svcmetrics "AstroChart/internal/service/metrics"
	"AstroChart/internal/service/ratelimit"
	"AstroChart/internal/service/timezone"
	"AstroChart/internal/services/astro"
	"AstroChart/internal/usecase"
	"AstroChart/pkg/cache"
	pkgch "AstroChart/pkg/clickhouse"
	"AstroChart/pkg/config"
	xhttp "AstroChart/pkg/http"
	pkgkafka "AstroChart/pkg/kafka"
	applogger "AstroChart/pkg/logger"
	"AstroChart/pkg/metrics"
	"AstroChart/pkg/postgres"
	"AstroChart/pkg/queue"
	"AstroChart/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:   cfg.Logger.Level,
		Format:  cfg.Logger.Format,
		Output:  cfg.Logger.Output,
		Service: cfg.App.Name,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvidePostgresClient opens the chart store and applies pending migrations.
func ProvidePostgresClient(cfg *config.Config, l *applogger.Logger) (*postgres.Client, error) {
	client, err := postgres.NewClient(
		postgres.WithDSN(cfg.Postgres.DSN),
		postgres.WithPool(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns, cfg.Postgres.ConnMaxLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	if cfg.Postgres.AutoMigrate {
		if err := migrations.Up(client.DB().DB); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		l.Info("postgres: schema up to date")
	}
	return client, nil
}

func ProvideChartRepository(pg *postgres.Client) repository.ChartRepository {
	return internalrepo.NewPGChartRepository(pg.DB())
}

func ProvideInterpretationRepository(pg *postgres.Client) repository.InterpretationRepository {
	return internalrepo.NewPGInterpretationRepository(pg.DB())
}

func ProvideAdminRepository(pg *postgres.Client) repository.AdminRepository {
	return internalrepo.NewPGAdminRepository(pg.DB())
}

// ProvideRedisCache connects to Redis when enabled. Nil means in-process only.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, 0, 0),
		cache.WithRedisPrefix("astro:cache:"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCache layers an in-process LRU over Redis, or uses the LRU alone.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize))
	}
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(cfg.Cache.MemorySize),
		cache.WithLayeredMemoryTTL(cfg.Cache.MemoryTTL),
	)
}

// ProvideJobQueue builds the Redis job queue. It needs Redis; nil otherwise.
func ProvideJobQueue(cfg *config.Config, rc *cache.RedisCache, l *applogger.Logger) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:     cfg.Queue.Workers,
		RetryLimit:  cfg.Queue.MaxRetries,
		PollTimeout: cfg.Queue.PollTimeout,
	}, rc.Client(), queue.ModeProducerConsumer, queue.WithKeyPrefix(cfg.Queue.Name))
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is enabled.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideChartPublisher publishes chart events to Kafka, or nowhere.
func ProvideChartPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return internalrepo.NopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideKafkaConsumer creates the chart request consumer when Kafka is enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TracingHook{Logger: l},
		pkgkafka.JSONPayloadHook{},
	))
	return consumer, nil
}

// ProvideClickHouseClient creates a ClickHouse client when analytics are enabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePositionPipeline batches chart positions into ClickHouse. Nil when analytics are off.
func ProvidePositionPipeline(cfg *config.Config, ch *pkgch.Client, m repository.Metrics, l *applogger.Logger) (*mid.PositionPipeline, error) {
	if ch == nil {
		return nil, nil
	}
	sink := internalrepo.NewCHPositionSink(ch, cfg.ClickHouse.Database+".chart_positions", l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sink.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return mid.NewPositionPipeline(sink, m,
		mid.WithBatchSize(cfg.ClickHouse.BatchSize),
		mid.WithFlushInterval(cfg.ClickHouse.BatchTimeout),
		mid.WithPipelineLogger(l),
	), nil
}

func ProvideEphemeris(cfg *config.Config, l *applogger.Logger) (*ephemeris.Engine, error) {
	opts := []ephemeris.Option{ephemeris.WithLogger(l)}
	if cfg.Ephemeris.VSOP87Dir != "" {
		opts = append(opts, ephemeris.WithVSOP87(cfg.Ephemeris.VSOP87Dir))
	}
	return ephemeris.NewEngine(opts...)
}

func ProvideTimeZones(cfg *config.Config, l *applogger.Logger) (*timezone.Finder, error) {
	return timezone.New(timezone.WithCacheSize(cfg.Ephemeris.ZoneCache), timezone.WithLogger(l))
}

// ProvideCalculator builds the chart calculator with the configured house system and orbs.
func ProvideCalculator(cfg *config.Config, eng *ephemeris.Engine, zones *timezone.Finder, l *applogger.Logger) (domsvc.ChartCalculator, error) {
	system, err := domsvc.ParseHouseSystem(strings.ToLower(cfg.Ephemeris.HouseSystem))
	if err != nil {
		return nil, err
	}
	orbs, err := parseOrbs(cfg.Ephemeris.Orbs)
	if err != nil {
		return nil, err
	}
	return astro.NewCalculator(eng, zones,
		astro.WithHouseSystem(system),
		astro.WithOrbs(orbs),
		astro.WithLogger(l),
	), nil
}

func parseOrbs(in map[string]float64) (map[models.AspectType]float64, error) {
	known := []models.AspectType{models.Conjunction, models.Sextile, models.Square, models.Trine, models.Opposition}
	out := make(map[models.AspectType]float64, len(in))
	for name, orb := range in {
		matched := false
		for _, t := range known {
			if strings.EqualFold(name, string(t)) {
				out[t] = orb
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("ephemeris.orbs: unknown aspect %q", name)
		}
	}
	return out, nil
}

func ProvideHub(cfg *config.Config, l *applogger.Logger) *ws.Hub {
	return ws.NewHub(ws.WithOriginCheck(cfg.Server.CORSOrigins), ws.WithLogger(l))
}

// ProvideChartsUseCase wires the optional side effects that are configured.
func ProvideChartsUseCase(
	cfg *config.Config,
	calc domsvc.ChartCalculator,
	repo repository.ChartRepository,
	m repository.Metrics,
	c cache.Service,
	pub repository.Publisher,
	pipeline *mid.PositionPipeline,
	hub *ws.Hub,
	jobs *queue.RedisQueue,
	l *applogger.Logger,
) *usecase.ChartsUseCase {
	opts := []usecase.ChartsOption{
		usecase.WithChartCache(c, cfg.Cache.ChartTTL, cfg.Cache.PreviewTTL),
		usecase.WithPublisher(pub),
		usecase.WithBroadcaster(hub),
		usecase.WithBatchConcurrency(cfg.Queue.Concurrency),
		usecase.WithChartsLogger(l),
	}
	if pipeline != nil {
		opts = append(opts, usecase.WithPositionQueue(pipeline))
	}
	if jobs != nil {
		opts = append(opts, usecase.WithJobQueue(jobs))
	}
	return usecase.NewChartsUseCase(calc, repo, m, opts...)
}

func ProvideInterpretationsUseCase(cfg *config.Config, repo repository.InterpretationRepository, charts *usecase.ChartsUseCase, c cache.Service) *usecase.InterpretationsUseCase {
	return usecase.NewInterpretationsUseCase(repo, charts, usecase.WithReadingCache(c, cfg.Cache.ChartTTL))
}

func ProvideAuthService(cfg *config.Config) (*auth.Service, error) {
	return auth.New(cfg.Auth.JWTSecret, auth.WithTTL(cfg.Auth.TokenTTL), auth.WithIssuer(cfg.Auth.Issuer))
}

func ProvideAdminUseCase(repo repository.AdminRepository, svc *auth.Service) *usecase.AdminUseCase {
	return usecase.NewAdminUseCase(repo, svc)
}

func ProvideGeocoder(cfg *config.Config, c cache.Service, l *applogger.Logger) repository.Geocoder {
	return geocode.NewNominatim(geocode.Config{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Geocoder.Timeout,
		RPS:       cfg.Geocoder.RPS,
		Retries:   cfg.Geocoder.Retries,
		CacheTTL:  cfg.Cache.LocationTTL,
	}, geocode.WithCache(c), geocode.WithLogger(l))
}

// ProvideRateLimiter returns the per-IP limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideHTTPServer registers every API handler on one Echo server.
func ProvideHTTPServer(
	cfg *config.Config,
	charts *usecase.ChartsUseCase,
	interps *usecase.InterpretationsUseCase,
	admins *usecase.AdminUseCase,
	geocoder repository.Geocoder,
	hub *ws.Hub,
	limiter *ratelimit.Limiter,
	l *applogger.Logger,
) *xhttp.Server {
	handlers := []xhttp.Handler{
		api.NewChartsHandler(l, charts, interps, geocoder),
		api.NewInterpretationsHandler(l, interps, admins),
		api.NewAdminHandler(l, admins),
		hub,
	}

	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, xhttp.WithCORSOrigins(cfg.Server.CORSOrigins))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(mid.RateLimit(limiter)))
	}
	return xhttp.NewServer(handlers, opts...)
}

func ProvideChartRequestsHandler(cfg *config.Config, charts *usecase.ChartsUseCase, m repository.Metrics, l *applogger.Logger) *usecase.ChartRequestsHandler {
	return usecase.NewChartRequestsHandler(cfg.Kafka.RequestTopic, charts, m, l)
}

func ProvideChartComputeJob(charts *usecase.ChartsUseCase, l *applogger.Logger) *usecase.ChartComputeJob {
	return usecase.NewChartComputeJob(charts, l)
}

// ProvideApp assembles the runtime.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	pg *postgres.Client,
	rc *cache.RedisCache,
	jobs *queue.RedisQueue,
	job *usecase.ChartComputeJob,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	requests *usecase.ChartRequestsHandler,
	ch *pkgch.Client,
	pipeline *mid.PositionPipeline,
	hub *ws.Hub,
	limiter *ratelimit.Limiter,
) *server.App {
	if producer != nil && cfg.Logger.Collector.Enabled {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval: cfg.Logger.Collector.FlushInterval,
			Topic:        cfg.Logger.Collector.Topic,
			Publisher:    producer,
		})
	}
	if jobs != nil {
		jobs.RegisterJobs(job)
	}
	if consumer != nil {
		consumer.RegisterHandler(requests)
	}

	return server.New(cfg, l, srv, server.Components{
		Postgres:  pg,
		Redis:     rc,
		Jobs:      jobs,
		Producer:  producer,
		Consumer:  consumer,
		Positions: pipeline,
		Hub:       hub,
		Limiter:   limiter,
		Analytics: ch,
	})
}
