package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	domsvc "AstroChart/internal/domain/service"
	"AstroChart/internal/repository"
	"AstroChart/internal/service/metrics"
	"AstroChart/pkg/cache"
	applogger "AstroChart/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxChartList caps ListCharts.
	MaxChartList = 100
	// JobChartCompute is the queue message type of a batch computation.
	JobChartCompute = "chart.compute"
)

// PositionQueue accepts flattened chart positions for asynchronous storage.
type PositionQueue interface {
	Offer(rows []*models.PositionRow) int
}

// JobQueue enqueues background jobs.
type JobQueue interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) (string, error)
}

// ChartsUseCase computes, stores and serves natal charts. Side effects
// after a chart is stored (event, analytics rows, live feed) never fail
// the request.
type ChartsUseCase struct {
	calc        domsvc.ChartCalculator
	repo        domrepo.ChartRepository
	metrics     domrepo.Metrics
	cache       cache.Service
	pub         domrepo.Publisher
	positions   PositionQueue
	broadcaster domrepo.Broadcaster
	jobs        JobQueue
	logger      *applogger.Logger

	chartTTL    time.Duration
	previewTTL  time.Duration
	concurrency int
	now         func() time.Time
	newID       func() string
}

type ChartsOption func(*ChartsUseCase)

// WithChartCache caches stored charts for chartTTL and previews for previewTTL.
func WithChartCache(c cache.Service, chartTTL, previewTTL time.Duration) ChartsOption {
	return func(u *ChartsUseCase) {
		u.cache = c
		if chartTTL > 0 {
			u.chartTTL = chartTTL
		}
		if previewTTL > 0 {
			u.previewTTL = previewTTL
		}
	}
}

func WithPublisher(p domrepo.Publisher) ChartsOption {
	return func(u *ChartsUseCase) { u.pub = p }
}

func WithPositionQueue(q PositionQueue) ChartsOption {
	return func(u *ChartsUseCase) { u.positions = q }
}

func WithBroadcaster(b domrepo.Broadcaster) ChartsOption {
	return func(u *ChartsUseCase) { u.broadcaster = b }
}

func WithJobQueue(q JobQueue) ChartsOption {
	return func(u *ChartsUseCase) { u.jobs = q }
}

// WithBatchConcurrency bounds the charts computed in parallel by CreateBatch.
func WithBatchConcurrency(n int) ChartsOption {
	return func(u *ChartsUseCase) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

func WithChartsLogger(l *applogger.Logger) ChartsOption {
	return func(u *ChartsUseCase) {
		if l != nil {
			u.logger = l
		}
	}
}

func NewChartsUseCase(calc domsvc.ChartCalculator, repo domrepo.ChartRepository, m domrepo.Metrics, opts ...ChartsOption) *ChartsUseCase {
	u := &ChartsUseCase{
		calc:        calc,
		repo:        repo,
		metrics:     m,
		logger:      applogger.Nop(),
		chartTTL:    time.Hour,
		previewTTL:  10 * time.Minute,
		concurrency: 4,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateChart computes and stores a chart.
func (u *ChartsUseCase) CreateChart(ctx context.Context, req models.NatalChartCreate) (*models.NatalChart, error) {
	return u.create(ctx, u.newID(), req)
}

func (u *ChartsUseCase) create(ctx context.Context, id string, req models.NatalChartCreate) (*models.NatalChart, error) {
	chart, err := u.compute(ctx, req.ChartInput())
	if err != nil {
		return nil, err
	}

	nc := &models.NatalChart{
		ID:            id,
		Name:          req.Name,
		BirthDate:     req.BirthDate,
		BirthTime:     req.BirthTime,
		BirthLocation: req.BirthLocation,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Chart:         chart,
		CreatedAt:     u.now().UTC(),
	}
	if err := u.repo.Create(ctx, nc); err != nil {
		u.metrics.RecordError("chart_store")
		return nil, fmt.Errorf("store chart: %w", err)
	}

	u.cacheChart(ctx, nc)
	if u.positions != nil {
		u.positions.Offer(repository.PositionRows(nc))
	}
	u.emit(ctx, chartEvent(models.ChartEventCreated, nc, u.now()))
	return nc, nil
}

// CreateBatch computes and stores every request with bounded concurrency.
// The first failure cancels the remaining computations.
//
// A non-empty batchID makes the call idempotent: chart i gets an id derived
// from batchID and i, and charts already stored by an earlier attempt are
// returned as they are instead of being computed again.
func (u *ChartsUseCase) CreateBatch(ctx context.Context, batchID string, reqs []models.NatalChartCreate) ([]*models.NatalChart, error) {
	out := make([]*models.NatalChart, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i := range reqs {
		i := i
		g.Go(func() error {
			nc, err := u.batchChart(gctx, batchID, i, reqs[i])
			if err != nil {
				return fmt.Errorf("chart %d (%s): %w", i, reqs[i].Name, err)
			}
			out[i] = nc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *ChartsUseCase) batchChart(ctx context.Context, batchID string, i int, req models.NatalChartCreate) (*models.NatalChart, error) {
	if batchID == "" {
		return u.create(ctx, u.newID(), req)
	}
	id := batchChartID(batchID, i)
	nc, err := u.repo.Get(ctx, id)
	switch {
	case err == nil:
		return nc, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("lookup chart %s: %w", id, err)
	}
	return u.create(ctx, id, req)
}

// batchNamespace scopes the name-based uuids of batch charts.
var batchNamespace = uuid.MustParse("5b0d8a8e-2f4c-4e61-9a7b-3c1e6d0f4a92")

func batchChartID(batchID string, i int) string {
	return uuid.NewSHA1(batchNamespace, []byte(batchID+"/"+strconv.Itoa(i))).String()
}

// EnqueueBatch schedules a batch computation on the job queue and returns the job id.
func (u *ChartsUseCase) EnqueueBatch(ctx context.Context, req models.ChartBatchRequest) (string, error) {
	if u.jobs == nil {
		return "", fmt.Errorf("batch jobs: %w", ErrUnavailable)
	}
	id, err := u.jobs.Enqueue(ctx, JobChartCompute, req)
	if err != nil {
		u.metrics.RecordError("chart_enqueue")
		return "", fmt.Errorf("enqueue batch: %w", err)
	}
	return id, nil
}

// Preview computes a chart without storing it. Results are cached by input.
func (u *ChartsUseCase) Preview(ctx context.Context, in models.ChartInput) (models.Chart, error) {
	if u.cache == nil {
		return u.compute(ctx, in)
	}
	key := cache.GenerateKey("preview", cache.HashKey(in.Date, in.Time,
		strconv.FormatFloat(in.Latitude, 'f', 6, 64),
		strconv.FormatFloat(in.Longitude, 'f', 6, 64)))
	chart, hit, err := cache.GetOrLoad(ctx, u.cache, key, u.previewTTL, func(ctx context.Context) (models.Chart, error) {
		return u.compute(ctx, in)
	})
	metrics.CacheResult("preview", hit)
	return chart, err
}

// ListCharts returns stored charts newest first.
func (u *ChartsUseCase) ListCharts(ctx context.Context, since time.Time, limit int) ([]*models.NatalChart, error) {
	if limit <= 0 || limit > MaxChartList {
		limit = MaxChartList
	}
	charts, err := u.repo.List(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	return charts, nil
}

func (u *ChartsUseCase) GetChart(ctx context.Context, id string) (*models.NatalChart, error) {
	key := chartKey(id)
	if u.cache != nil {
		var nc models.NatalChart
		if err := u.cache.Get(ctx, key, &nc); err == nil {
			metrics.CacheResult("chart", true)
			return &nc, nil
		}
		metrics.CacheResult("chart", false)
	}

	nc, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chart %s: %w", id, err)
	}
	u.cacheChart(ctx, nc)
	return nc, nil
}

func (u *ChartsUseCase) DeleteChart(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete chart %s: %w", id, err)
	}
	if u.cache != nil {
		if err := u.cache.Delete(ctx, chartKey(id), readingKey(id)); err != nil {
			u.logger.Warn("chart cache invalidation failed", applogger.String("id", id), applogger.Error(err))
		}
	}
	u.emit(ctx, &models.ChartEvent{Type: models.ChartEventDeleted, ChartID: id, At: u.now().UTC()})
	return nil
}

func (u *ChartsUseCase) compute(ctx context.Context, in models.ChartInput) (models.Chart, error) {
	start := time.Now()
	chart, err := u.calc.Compute(ctx, in)
	if err != nil {
		u.metrics.RecordError("chart_compute")
		return models.Chart{}, err
	}
	u.metrics.RecordChartComputed(chart.HouseSystem, time.Since(start).Seconds())
	return chart, nil
}

func (u *ChartsUseCase) cacheChart(ctx context.Context, nc *models.NatalChart) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Set(ctx, chartKey(nc.ID), nc, u.chartTTL); err != nil {
		u.logger.Warn("chart cache write failed", applogger.String("id", nc.ID), applogger.Error(err))
	}
}

func (u *ChartsUseCase) emit(ctx context.Context, e *models.ChartEvent) {
	if u.broadcaster != nil {
		u.broadcaster.Broadcast(e)
	}
	if u.pub == nil {
		return
	}
	if err := u.pub.Publish(ctx, e); err != nil {
		u.metrics.RecordError("event_publish")
		u.logger.Error("chart event publish failed",
			applogger.String("type", e.Type),
			applogger.String("chart_id", e.ChartID),
			applogger.Error(err))
		return
	}
	u.metrics.RecordEventPublished(e.Type)
}

func chartKey(id string) string { return cache.GenerateKey("chart", id) }

func readingKey(chartID string) string { return cache.GenerateKey("reading", chartID) }

func chartEvent(typ string, nc *models.NatalChart, at time.Time) *models.ChartEvent {
	e := &models.ChartEvent{Type: typ, ChartID: nc.ID, Name: nc.Name, At: at.UTC()}
	if p, ok := nc.Position(models.NameSun); ok {
		e.Sun = p.Sign.String()
	}
	if p, ok := nc.Position(models.NameMoon); ok {
		e.Moon = p.Sign.String()
	}
	if p, ok := nc.Position(models.NameAscendant); ok {
		e.Ascendant = p.Sign.String()
	}
	return e
}
