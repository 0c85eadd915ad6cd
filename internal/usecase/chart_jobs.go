package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"AstroChart/internal/domain/models"
	xhttp "AstroChart/pkg/http"
	applogger "AstroChart/pkg/logger"
	"AstroChart/pkg/queue"
)

// ChartComputeJob computes and stores a batch of charts taken from the job queue.
type ChartComputeJob struct {
	charts *ChartsUseCase
	logger *applogger.Logger
}

func NewChartComputeJob(charts *ChartsUseCase, l *applogger.Logger) *ChartComputeJob {
	if l == nil {
		l = applogger.Nop()
	}
	return &ChartComputeJob{charts: charts, logger: l}
}

func (j *ChartComputeJob) Name() string { return "chart_compute" }

func (j *ChartComputeJob) Type() string { return JobChartCompute }

func (j *ChartComputeJob) Handle(ctx context.Context, payload json.RawMessage) error {
	req, err := queue.DecodePayload[models.ChartBatchRequest](payload)
	if err != nil {
		return queue.Permanent(err)
	}
	if verrs := xhttp.Validate(req); verrs != nil {
		j.logger.Warn("chart batch rejected", applogger.Any("errors", verrs))
		return queue.Permanent(fmt.Errorf("invalid chart batch: %d field errors", len(verrs)))
	}

	// retries of one message reuse its id, so charts stored by an earlier
	// attempt are not stored again
	batchID, _ := queue.MessageID(ctx)
	charts, err := j.charts.CreateBatch(ctx, batchID, req.Charts)
	switch {
	case errors.Is(err, models.ErrInvalidDateTime), errors.Is(err, models.ErrInvalidLocation), errors.Is(err, models.ErrOutOfRange):
		return queue.Permanent(fmt.Errorf("chart batch: %w", err))
	case err != nil:
		return fmt.Errorf("chart batch: %w", err)
	}
	j.logger.Info("chart batch stored", applogger.Int("charts", len(charts)))
	return nil
}

var _ queue.Job = (*ChartComputeJob)(nil)
