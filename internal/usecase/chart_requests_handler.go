package usecase

import (
	"context"
	"encoding/json"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	xhttp "AstroChart/pkg/http"
	pkgkafka "AstroChart/pkg/kafka"
	applogger "AstroChart/pkg/logger"
)

// ChartRequestsHandler consumes chart requests from Kafka and stores the computed charts.
type ChartRequestsHandler struct {
	topic   string
	charts  *ChartsUseCase
	metrics domrepo.Metrics
	logger  *applogger.Logger
}

func NewChartRequestsHandler(topic string, charts *ChartsUseCase, metrics domrepo.Metrics, l *applogger.Logger) *ChartRequestsHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &ChartRequestsHandler{topic: topic, charts: charts, metrics: metrics, logger: l}
}

func (h *ChartRequestsHandler) Topic() string { return h.topic }

// incoming message schema: models.NatalChartCreate
func (h *ChartRequestsHandler) Handle(ctx context.Context, b []byte) error {
	var req models.NatalChartCreate
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		h.logger.Warn("chart request dropped", applogger.Error(err))
		return nil
	}
	if verrs := xhttp.Validate(&req); verrs != nil {
		h.metrics.RecordError("consumer_validate")
		h.logger.Warn("chart request dropped", applogger.String("name", req.Name), applogger.Any("errors", verrs))
		return nil
	}

	start := time.Now()
	_, err := h.charts.CreateChart(ctx, req)
	h.metrics.RecordLatency("consumer_chart_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*ChartRequestsHandler)(nil)
