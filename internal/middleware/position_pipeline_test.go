package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"AstroChart/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	batches [][]*models.PositionRow
	fail    bool
}

func (s *memorySink) Init(context.Context) error { return nil }
func (s *memorySink) StoreBatch(_ context.Context, rows []*models.PositionRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	cp := append([]*models.PositionRow(nil), rows...)
	s.batches = append(s.batches, cp)
	return nil
}
func (s *memorySink) Query(context.Context, string, time.Time, time.Time, int) ([]*models.PositionRow, error) {
	return nil, nil
}
func (s *memorySink) Health(context.Context) error { return nil }
func (s *memorySink) Close() error { return nil }

func (s *memorySink) rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

type countingMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (m *countingMetrics) RecordChartComputed(string, float64) {}
func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = map[string]int{}
	}
	m.errors[kind]++
}
func (m *countingMetrics) RecordEventPublished(string) {}
func (m *countingMetrics) RecordLatency(string, float64) {}

func (m *countingMetrics) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func row(chart, name string, lon float64) *models.PositionRow {
	return &models.PositionRow{ChartID: chart, Name: name, Longitude: lon, House: 1}
}

func TestPositionPipeline_OfferValidates(t *testing.T) {
	metrics := &countingMetrics{}
	p := NewPositionPipeline(&memorySink{}, metrics, WithBufferSize(2))

	n := p.Offer([]*models.PositionRow{
		row("c1", "Sun", 54.4),
		nil,
		row("", "Moon", 10),
		row("c1", "Mars", 360),
		row("c1", "Venus", 20),
		row("c1", "Pluto", 225.9),
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, p.Pending())
	assert.Equal(t, 3, metrics.count("pipeline_validate"))
	assert.Equal(t, 1, metrics.count("pipeline_buffer_full"))
}

func TestPositionPipeline_FlushesBySizeAndOnStop(t *testing.T) {
	sink := &memorySink{}
	p := NewPositionPipeline(sink, &countingMetrics{}, WithBatchSize(2), WithFlushInterval(time.Hour))
	p.Start(context.Background())

	p.Offer([]*models.PositionRow{row("c1", "Sun", 1), row("c1", "Moon", 2), row("c1", "Mars", 3)})
	require.Eventually(t, func() bool { return sink.rows() == 2 }, time.Second, 5*time.Millisecond)

	p.Stop()
	assert.Equal(t, 3, sink.rows())
	p.Stop()
}

func TestPositionPipeline_FlushesOnTick(t *testing.T) {
	sink := &memorySink{}
	p := NewPositionPipeline(sink, &countingMetrics{}, WithBatchSize(100), WithFlushInterval(10*time.Millisecond))
	p.Start(context.Background())
	defer p.Stop()

	p.Offer([]*models.PositionRow{row("c2", "Sun", 1)})
	assert.Eventually(t, func() bool { return sink.rows() == 1 }, time.Second, 5*time.Millisecond)
}

func TestPositionPipeline_RecordsSinkFailures(t *testing.T) {
	sink := &memorySink{fail: true}
	metrics := &countingMetrics{}
	p := NewPositionPipeline(sink, metrics, WithBatchSize(1), WithFlushInterval(time.Hour))
	p.Start(context.Background())

	p.Offer([]*models.PositionRow{row("c3", "Sun", 1)})
	assert.Eventually(t, func() bool { return metrics.count("pipeline_flush") >= 1 }, time.Second, 5*time.Millisecond)
	p.Stop()
	assert.Equal(t, 0, sink.rows())
}
