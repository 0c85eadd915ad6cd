package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"AstroChart/internal/domain/models"
	"AstroChart/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kyivRequest(name string) models.NatalChartCreate {
	return models.NatalChartCreate{
		Name:          name,
		BirthDate:     "1990-05-15",
		BirthTime:     "14:30",
		BirthLocation: "Kyiv",
		Latitude:      50.4501,
		Longitude:     30.5234,
	}
}

type chartsFixture struct {
	uc    *ChartsUseCase
	calc  *stubCalculator
	repo  *memChartRepo
	m     *recordingMetrics
	pub   *recordingPublisher
	bc    *recordingBroadcaster
	rows  *recordingPositions
	jobs  *recordingJobs
	cache *cache.MemoryCache
}

func newChartsFixture(opts ...ChartsOption) *chartsFixture {
	f := &chartsFixture{
		calc:  &stubCalculator{},
		repo:  newMemChartRepo(),
		m:     newRecordingMetrics(),
		pub:   &recordingPublisher{},
		bc:    &recordingBroadcaster{},
		rows:  &recordingPositions{},
		jobs:  &recordingJobs{},
		cache: cache.NewMemoryCache(),
	}
	base := []ChartsOption{
		WithChartCache(f.cache, time.Hour, time.Minute),
		WithPublisher(f.pub),
		WithBroadcaster(f.bc),
		WithPositionQueue(f.rows),
		WithJobQueue(f.jobs),
	}
	f.uc = NewChartsUseCase(f.calc, f.repo, f.m, append(base, opts...)...)
	seq := 0
	f.uc.newID = func() string {
		seq++
		return fmt.Sprintf("chart-%d", seq)
	}
	f.uc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestCreateChart_StoresAndFansOut(t *testing.T) {
	f := newChartsFixture()
	nc, err := f.uc.CreateChart(context.Background(), kyivRequest("Olena"))
	require.NoError(t, err)

	assert.Equal(t, "chart-1", nc.ID)
	assert.Equal(t, "Kyiv", nc.BirthLocation)
	assert.Len(t, nc.Planets, 4)
	assert.Contains(t, f.repo.charts, "chart-1")
	assert.Equal(t, 1, f.m.computed)

	require.Len(t, f.pub.events, 1)
	e := f.pub.events[0]
	assert.Equal(t, models.ChartEventCreated, e.Type)
	assert.Equal(t, "Taurus", e.Sun)
	assert.Equal(t, "Cancer", e.Moon)
	assert.Equal(t, "Libra", e.Ascendant)
	assert.Equal(t, 1, f.m.events[models.ChartEventCreated])

	assert.Len(t, f.bc.events, 1)
	assert.Len(t, f.rows.rows, 4)

	var cached models.NatalChart
	require.NoError(t, f.cache.Get(context.Background(), "chart:chart-1", &cached))
	assert.Equal(t, "Olena", cached.Name)
}

func TestCreateChart_ComputeFailureStoresNothing(t *testing.T) {
	f := newChartsFixture()
	f.calc.err = models.ErrOutOfRange

	_, err := f.uc.CreateChart(context.Background(), kyivRequest("x"))
	assert.ErrorIs(t, err, models.ErrOutOfRange)
	assert.Empty(t, f.repo.charts)
	assert.Empty(t, f.pub.events)
	assert.Equal(t, 1, f.m.errors["chart_compute"])
}

func TestCreateChart_PublishFailureDoesNotFail(t *testing.T) {
	f := newChartsFixture()
	f.pub.err = errors.New("broker down")

	nc, err := f.uc.CreateChart(context.Background(), kyivRequest("x"))
	require.NoError(t, err)
	assert.NotEmpty(t, nc.ID)
	assert.Equal(t, 1, f.m.errors["event_publish"])
	assert.Len(t, f.bc.events, 1)
}

func TestCreateChart_StoreFailure(t *testing.T) {
	f := newChartsFixture()
	f.repo.err = errors.New("db down")

	_, err := f.uc.CreateChart(context.Background(), kyivRequest("x"))
	require.Error(t, err)
	assert.Empty(t, f.pub.events)
	assert.Empty(t, f.rows.rows)
}

func TestGetChart_ServedFromCache(t *testing.T) {
	f := newChartsFixture()
	nc, err := f.uc.CreateChart(context.Background(), kyivRequest("x"))
	require.NoError(t, err)

	got, err := f.uc.GetChart(context.Background(), nc.ID)
	require.NoError(t, err)
	assert.Equal(t, nc.ID, got.ID)
	assert.Equal(t, 0, f.repo.gets)

	_, err = f.uc.GetChart(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteChart_InvalidatesCache(t *testing.T) {
	f := newChartsFixture()
	nc, err := f.uc.CreateChart(context.Background(), kyivRequest("x"))
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteChart(context.Background(), nc.ID))
	_, err = f.uc.GetChart(context.Background(), nc.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.Len(t, f.pub.events, 2)
	assert.Equal(t, models.ChartEventDeleted, f.pub.events[1].Type)

	assert.ErrorIs(t, f.uc.DeleteChart(context.Background(), nc.ID), models.ErrNotFound)
}

func TestListCharts_CapsLimit(t *testing.T) {
	f := newChartsFixture()
	for i := 0; i < 3; i++ {
		_, err := f.uc.CreateChart(context.Background(), kyivRequest(fmt.Sprintf("c%d", i)))
		require.NoError(t, err)
	}

	all, err := f.uc.ListCharts(context.Background(), time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := f.uc.ListCharts(context.Background(), time.Time{}, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestPreview_CachedByInput(t *testing.T) {
	f := newChartsFixture()
	in := kyivRequest("x").ChartInput()

	c1, err := f.uc.Preview(context.Background(), in)
	require.NoError(t, err)
	c2, err := f.uc.Preview(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, c1.HouseSystem, c2.HouseSystem)
	assert.Equal(t, 1, f.calc.count())

	in.Time = "14:31"
	_, err = f.uc.Preview(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, f.calc.count())
	assert.Empty(t, f.repo.charts)
}

func TestCreateBatch(t *testing.T) {
	f := newChartsFixture(WithBatchConcurrency(2))
	var seq atomic.Int64
	f.uc.newID = func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }

	reqs := []models.NatalChartCreate{kyivRequest("a"), kyivRequest("b"), kyivRequest("c")}
	out, err := f.uc.CreateBatch(context.Background(), "", reqs)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, nc := range out {
		assert.Equal(t, reqs[i].Name, nc.Name)
	}
	assert.Equal(t, 3, f.calc.count())
}

func TestEnqueueBatch(t *testing.T) {
	f := newChartsFixture()
	req := models.ChartBatchRequest{Charts: []models.NatalChartCreate{kyivRequest("a")}}

	id, err := f.uc.EnqueueBatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)
	assert.Equal(t, JobChartCompute, f.jobs.msgType)

	bare := NewChartsUseCase(f.calc, f.repo, f.m)
	_, err = bare.EnqueueBatch(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnavailable)
}
