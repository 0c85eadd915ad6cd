package repository

import (
	"context"
	"time"

	"AstroChart/internal/domain/models"
)

// ChartRepository stores computed natal charts.
type ChartRepository interface {
	Create(ctx context.Context, c *models.NatalChart) error
	Get(ctx context.Context, id string) (*models.NatalChart, error)
	// List returns charts newest first, optionally only those created after since.
	List(ctx context.Context, since time.Time, limit int) ([]*models.NatalChart, error)
	Delete(ctx context.Context, id string) error
}

type InterpretationRepository interface {
	Create(ctx context.Context, i *models.Interpretation) error
	Get(ctx context.Context, id string) (*models.Interpretation, error)
	List(ctx context.Context, category string, limit int) ([]*models.Interpretation, error)
	Update(ctx context.Context, id string, upd models.InterpretationUpdate, at time.Time) (*models.Interpretation, error)
	Delete(ctx context.Context, id string) error
	// FindByKeys returns every interpretation of the category whose key is in keys.
	FindByKeys(ctx context.Context, category string, keys []string) ([]*models.Interpretation, error)
}

type AdminRepository interface {
	Create(ctx context.Context, a *models.Admin) error
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// Publisher ships chart events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e *models.ChartEvent) error
	PublishBatch(ctx context.Context, events []*models.ChartEvent) error
	Close() error
}

// PositionSink is the analytics store for flattened chart positions.
type PositionSink interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreBatch(ctx context.Context, rows []*models.PositionRow) error
	Query(ctx context.Context, name string, from, to time.Time, limit int) ([]*models.PositionRow, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Geocoder resolves free-form place names to coordinates.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]models.Location, error)
}

// Broadcaster fans chart events out to live subscribers.
type Broadcaster interface {
	Broadcast(e *models.ChartEvent)
}

type Metrics interface {
	RecordChartComputed(houseSystem string, seconds float64)
	RecordError(kind string)
	RecordEventPublished(eventType string)
	RecordLatency(op string, seconds float64)
}
