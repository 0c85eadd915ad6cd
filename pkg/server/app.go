package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AstroChart/internal/handler/ws"
	mid "AstroChart/internal/middleware"
	"AstroChart/internal/service/ratelimit"
	"AstroChart/pkg/cache"
	pkgch "AstroChart/pkg/clickhouse"
	"AstroChart/pkg/config"
	xhttp "AstroChart/pkg/http"
	pkgkafka "AstroChart/pkg/kafka"
	applogger "AstroChart/pkg/logger"
	"AstroChart/pkg/postgres"
	"AstroChart/pkg/queue"

	"golang.org/x/sync/errgroup"
)

// Components are the optional long-lived parts of the runtime. Nil fields are skipped.
type Components struct {
	Postgres  *postgres.Client
	Redis     *cache.RedisCache
	Jobs      *queue.RedisQueue
	Producer  *pkgkafka.Producer
	Consumer  *pkgkafka.Consumer
	Positions *mid.PositionPipeline
	Hub       *ws.Hub
	Limiter   *ratelimit.Limiter
	Analytics *pkgch.Client
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg    *config.Config
	logger *applogger.Logger
	http   *xhttp.Server
	c      Components
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, c Components) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, logger: l, http: srv, c: c}
}

// Run starts every component and blocks until ctx is cancelled or the HTTP
// server fails, then shuts down in reverse dependency order.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.c.Positions != nil {
		a.c.Positions.Start(runCtx)
	}
	if a.c.Jobs != nil {
		if err := a.c.Jobs.Start(); err != nil {
			return fmt.Errorf("job queue: %w", err)
		}
	}
	if a.c.Consumer != nil {
		if err := a.c.Consumer.Start(); err != nil {
			a.shutdown()
			return fmt.Errorf("kafka consumer: %w", err)
		}
	}
	if err := a.http.Start(); err != nil {
		a.shutdown()
		return fmt.Errorf("http server: %w", err)
	}
	a.logger.Info("astrochart started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("addr", a.http.Addr().String()),
		applogger.String("version", a.cfg.App.Version))

	g, gctx := errgroup.WithContext(runCtx)
	if a.c.Limiter != nil {
		g.Go(func() error {
			a.c.Limiter.Run(gctx, time.Minute)
			return nil
		})
	}
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-a.http.Errors():
			return fmt.Errorf("http server: %w", err)
		}
	})

	<-gctx.Done()
	cancel()
	runErr := g.Wait()

	a.logger.Info("shutdown signal received")
	a.shutdown()
	return runErr
}

// shutdown stops intake first, then drains workers and closes clients.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.http.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	if a.c.Hub != nil {
		a.c.Hub.Close()
	}
	if a.c.Consumer != nil {
		if err := a.c.Consumer.Stop(ctx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.c.Jobs != nil {
		if err := a.c.Jobs.Stop(ctx); err != nil {
			a.logger.Warn("job queue stop error", applogger.Error(err))
		}
	}
	if a.c.Positions != nil {
		a.c.Positions.Stop()
	}

	// the log collector publishes through the producer
	a.logger.RemoveCollector()
	if a.c.Producer != nil {
		if err := a.c.Producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.c.Analytics != nil {
		if err := a.c.Analytics.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.c.Redis != nil {
		if err := a.c.Redis.Close(); err != nil {
			a.logger.Warn("redis close error", applogger.Error(err))
		}
	}
	if a.c.Postgres != nil {
		if err := a.c.Postgres.Close(); err != nil {
			a.logger.Warn("postgres close error", applogger.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
}
