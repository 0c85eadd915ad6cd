package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	applogger "AstroChart/pkg/logger"
)

// PositionPipeline sits between chart creation and the analytics sink.
// It validates rows, buffers them and writes them in batches so that a slow
// or unavailable sink never delays an API request.
type PositionPipeline struct {
	sink      domrepo.PositionSink
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	batchSize int
	interval  time.Duration
	bufCh     chan *models.PositionRow
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	mu        sync.Mutex
}

type PipelineOption func(*PositionPipeline)

// WithBatchSize sets the number of rows written per sink call.
func WithBatchSize(n int) PipelineOption {
	return func(p *PositionPipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithFlushInterval sets the longest time a row waits in the buffer.
func WithFlushInterval(d time.Duration) PipelineOption {
	return func(p *PositionPipeline) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithBufferSize sets the buffer capacity; rows offered to a full buffer are dropped.
func WithBufferSize(n int) PipelineOption {
	return func(p *PositionPipeline) {
		if n > 0 {
			p.bufCh = make(chan *models.PositionRow, n)
		}
	}
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *PositionPipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPositionPipeline creates a pipeline writing to sink.
func NewPositionPipeline(sink domrepo.PositionSink, metrics domrepo.Metrics, opts ...PipelineOption) *PositionPipeline {
	p := &PositionPipeline{
		sink:      sink,
		metrics:   metrics,
		logger:    applogger.Nop(),
		batchSize: 512,
		interval:  2 * time.Second,
		bufCh:     make(chan *models.PositionRow, 10000),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Offer validates rows and queues them without blocking. It returns the
// number of rows accepted.
func (p *PositionPipeline) Offer(rows []*models.PositionRow) int {
	accepted := 0
	for _, r := range rows {
		if err := validateRow(r); err != nil {
			p.metrics.RecordError("pipeline_validate")
			continue
		}
		select {
		case p.bufCh <- r:
			accepted++
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
	}
	return accepted
}

// Pending returns the number of buffered rows.
func (p *PositionPipeline) Pending() int { return len(p.bufCh) }

// Start launches the background flusher.
func (p *PositionPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go p.run(ctx)
}

// Stop flushes what is buffered and stops the flusher.
func (p *PositionPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
	<-p.doneCh
}

func (p *PositionPipeline) run(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	batch := make([]*models.PositionRow, 0, p.batchSize)
	failures, skipTicks := 0, 0
	flush := func(fctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := p.write(fctx, batch); err != nil {
			failures++
			skipTicks = 1 << min(failures, 5)
			// keep the batch while it still fits; older rows go first
			if len(batch) >= cap(p.bufCh) || failures > 5 {
				p.logger.Error("position pipeline dropping batch",
					applogger.Int("rows", len(batch)),
					applogger.Error(err))
				p.metrics.RecordError("pipeline_drop")
				batch = batch[:0]
				failures = 0
			}
			return
		}
		failures = 0
		batch = batch[:0]
	}

	for {
		select {
		case <-p.stopCh:
			p.drainInto(&batch)
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			flush(sctx)
			cancel()
			if len(batch) > 0 {
				p.logger.Warn("position pipeline stopped with unwritten rows", applogger.Int("rows", len(batch)))
			}
			return
		case <-ctx.Done():
			return
		case r := <-p.bufCh:
			batch = append(batch, r)
			if len(batch) >= p.batchSize && skipTicks == 0 {
				flush(ctx)
			}
		case <-ticker.C:
			// after a failed write wait 2^failures ticks
			if skipTicks > 0 {
				skipTicks--
				continue
			}
			flush(ctx)
		}
	}
}

func (p *PositionPipeline) drainInto(batch *[]*models.PositionRow) {
	for {
		select {
		case r := <-p.bufCh:
			*batch = append(*batch, r)
		default:
			return
		}
	}
}

func (p *PositionPipeline) write(ctx context.Context, batch []*models.PositionRow) error {
	start := time.Now()
	if err := p.sink.StoreBatch(ctx, batch); err != nil {
		p.metrics.RecordError("pipeline_flush")
		return fmt.Errorf("position pipeline: %w", err)
	}
	p.metrics.RecordLatency("pipeline_flush", time.Since(start).Seconds())
	return nil
}

func validateRow(r *models.PositionRow) error {
	if r == nil {
		return fmt.Errorf("row nil")
	}
	if r.ChartID == "" || r.Name == "" {
		return fmt.Errorf("row missing chart id or name")
	}
	if r.Longitude < 0 || r.Longitude >= 360 || math.IsNaN(r.Longitude) {
		return fmt.Errorf("longitude %v out of range", r.Longitude)
	}
	if r.House > 12 {
		return fmt.Errorf("house %d out of range", r.House)
	}
	return nil
}
