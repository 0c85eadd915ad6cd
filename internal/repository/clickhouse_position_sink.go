package repository

import (
	"context"
	"fmt"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	pkgch "AstroChart/pkg/clickhouse"
	applogger "AstroChart/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

// DefaultPositionTable receives one row per chart point.
const DefaultPositionTable = "astro.chart_positions"

// CHPositionSink writes flattened chart positions to ClickHouse for
// aggregate queries (sign and house distributions, retrograde counts).
type CHPositionSink struct {
	ch      *pkgch.Client
	table   string
	l       *applogger.Logger
	retries uint64
}

var _ domrepo.PositionSink = (*CHPositionSink)(nil)

func NewCHPositionSink(ch *pkgch.Client, table string, l *applogger.Logger) *CHPositionSink {
	if table == "" {
		table = DefaultPositionTable
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHPositionSink{ch: ch, table: table, l: l, retries: 3}
}

// Init creates the database and table when missing.
func (s *CHPositionSink) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, []string{
		`CREATE DATABASE IF NOT EXISTS astro`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			chart_id    String,
			computed_at DateTime64(3, 'UTC'),
			julian_day  Float64,
			name        LowCardinality(String),
			kind        LowCardinality(String),
			longitude   Float64,
			latitude    Float64,
			speed       Float64,
			sign        LowCardinality(String),
			house       UInt8
		) ENGINE = MergeTree
		PARTITION BY toYYYYMM(computed_at)
		ORDER BY (name, computed_at, chart_id)`, s.table),
	})
}

// StoreBatch inserts rows in one block, retrying transient failures with
// exponential backoff.
func (s *CHPositionSink) StoreBatch(ctx context.Context, rows []*models.PositionRow) error {
	if len(rows) == 0 {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO %s (chart_id, computed_at, julian_day, name, kind, longitude, latitude, speed, sign, house)`, s.table)
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		if r == nil || r.ChartID == "" {
			continue
		}
		values = append(values, []any{
			r.ChartID, r.ComputedAt, r.JulianDay, r.Name, r.Kind,
			r.Longitude, r.Latitude, r.Speed, r.Sign, r.House,
		})
	}

	start := time.Now()
	attempt := 0
	op := func() error {
		attempt++
		return s.ch.InsertBatch(ctx, q, values)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newExpBackoff(), s.retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		s.l.Error("clickhouse store positions failed",
			applogger.String("table", s.table),
			applogger.Int("rows", len(values)),
			applogger.Int("attempts", attempt),
			applogger.Error(err))
		return fmt.Errorf("store positions: %w", err)
	}
	s.l.Debug("clickhouse store positions ok",
		applogger.String("table", s.table),
		applogger.Int("rows", len(values)),
		applogger.Duration("duration", time.Since(start)))
	return nil
}

// Query returns the stored positions of one point, newest first.
func (s *CHPositionSink) Query(ctx context.Context, name string, from, to time.Time, limit int) ([]*models.PositionRow, error) {
	q := fmt.Sprintf(`
		SELECT chart_id, computed_at, julian_day, name, kind, longitude, latitude, speed, sign, house
		FROM %s
		WHERE name = ? AND computed_at >= ? AND computed_at <= ?
		ORDER BY computed_at DESC
		LIMIT ?`, s.table)
	rows, err := s.ch.DB().QueryContext(ctx, q, name, from, to, limit)
	if err != nil {
		s.l.Error("clickhouse query positions error",
			applogger.String("table", s.table),
			applogger.String("name", name),
			applogger.Error(err))
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.PositionRow, 0, limit)
	for rows.Next() {
		var r models.PositionRow
		if err := rows.Scan(&r.ChartID, &r.ComputedAt, &r.JulianDay, &r.Name, &r.Kind,
			&r.Longitude, &r.Latitude, &r.Speed, &r.Sign, &r.House); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHPositionSink) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHPositionSink) Close() error {
	return s.ch.Close()
}

func newExpBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

// PositionRows flattens a stored chart into analytics rows. Angles get house 0.
func PositionRows(c *models.NatalChart) []*models.PositionRow {
	out := make([]*models.PositionRow, 0, len(c.Planets))
	for _, p := range c.Planets {
		var house uint8
		if p.House != nil {
			house = uint8(*p.House)
		}
		out = append(out, &models.PositionRow{
			ChartID:    c.ID,
			ComputedAt: c.CreatedAt,
			JulianDay:  c.JulianDay,
			Name:       p.Name,
			Kind:       p.Kind.String(),
			Longitude:  p.Longitude,
			Latitude:   p.Latitude,
			Speed:      p.Speed,
			Sign:       p.Sign.String(),
			House:      house,
		})
	}
	return out
}
