package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

const chartColumns = `id, name, birth_date, birth_time, birth_location, latitude, longitude,
	planets, houses, aspects, house_system, julian_day, utc, time_zone, created_at`

type chartRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	BirthDate     string         `db:"birth_date"`
	BirthTime     string         `db:"birth_time"`
	BirthLocation string         `db:"birth_location"`
	Latitude      float64        `db:"latitude"`
	Longitude     float64        `db:"longitude"`
	Planets       types.JSONText `db:"planets"`
	Houses        types.JSONText `db:"houses"`
	Aspects       types.JSONText `db:"aspects"`
	HouseSystem   string         `db:"house_system"`
	JulianDay     float64        `db:"julian_day"`
	UTC           time.Time      `db:"utc"`
	TimeZone      string         `db:"time_zone"`
	CreatedAt     time.Time      `db:"created_at"`
}

func newChartRow(c *models.NatalChart) (*chartRow, error) {
	planets, err := json.Marshal(c.Planets)
	if err != nil {
		return nil, fmt.Errorf("encode planets: %w", err)
	}
	houses, err := json.Marshal(c.Houses)
	if err != nil {
		return nil, fmt.Errorf("encode houses: %w", err)
	}
	aspects := c.Aspects
	if aspects == nil {
		aspects = []models.Aspect{}
	}
	aspectsJSON, err := json.Marshal(aspects)
	if err != nil {
		return nil, fmt.Errorf("encode aspects: %w", err)
	}
	return &chartRow{
		ID:            c.ID,
		Name:          c.Name,
		BirthDate:     c.BirthDate,
		BirthTime:     c.BirthTime,
		BirthLocation: c.BirthLocation,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		Planets:       planets,
		Houses:        houses,
		Aspects:       aspectsJSON,
		HouseSystem:   c.HouseSystem,
		JulianDay:     c.JulianDay,
		UTC:           c.UTC,
		TimeZone:      c.TimeZone,
		CreatedAt:     c.CreatedAt,
	}, nil
}

func (r *chartRow) toModel() (*models.NatalChart, error) {
	c := &models.NatalChart{
		ID:            r.ID,
		Name:          r.Name,
		BirthDate:     r.BirthDate,
		BirthTime:     r.BirthTime,
		BirthLocation: r.BirthLocation,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		CreatedAt:     r.CreatedAt.UTC(),
	}
	c.HouseSystem = r.HouseSystem
	c.JulianDay = r.JulianDay
	c.UTC = r.UTC.UTC()
	c.TimeZone = r.TimeZone
	if err := r.Planets.Unmarshal(&c.Planets); err != nil {
		return nil, fmt.Errorf("decode planets of %s: %w", r.ID, err)
	}
	if err := r.Houses.Unmarshal(&c.Houses); err != nil {
		return nil, fmt.Errorf("decode houses of %s: %w", r.ID, err)
	}
	if err := r.Aspects.Unmarshal(&c.Aspects); err != nil {
		return nil, fmt.Errorf("decode aspects of %s: %w", r.ID, err)
	}
	return c, nil
}

// PGChartRepository stores natal charts in Postgres with the computed
// positions, houses and aspects as JSONB columns.
type PGChartRepository struct {
	db *sqlx.DB
}

var _ domrepo.ChartRepository = (*PGChartRepository)(nil)

func NewPGChartRepository(db *sqlx.DB) *PGChartRepository {
	return &PGChartRepository{db: db}
}

// Create inserts a chart. Inserting an id that already exists is a no-op,
// which keeps retried batch jobs idempotent.
func (r *PGChartRepository) Create(ctx context.Context, c *models.NatalChart) error {
	row, err := newChartRow(c)
	if err != nil {
		return err
	}
	const q = `INSERT INTO natal_charts (` + chartColumns + `)
		VALUES (:id, :name, :birth_date, :birth_time, :birth_location, :latitude, :longitude,
			:planets, :houses, :aspects, :house_system, :julian_day, :utc, :time_zone, :created_at)
		ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("insert chart: %w", err)
	}
	return nil
}

func (r *PGChartRepository) Get(ctx context.Context, id string) (*models.NatalChart, error) {
	var row chartRow
	err := r.db.GetContext(ctx, &row, `SELECT `+chartColumns+` FROM natal_charts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chart: %w", err)
	}
	return row.toModel()
}

func (r *PGChartRepository) List(ctx context.Context, since time.Time, limit int) ([]*models.NatalChart, error) {
	var (
		rows []chartRow
		err  error
	)
	if since.IsZero() {
		err = r.db.SelectContext(ctx, &rows,
			`SELECT `+chartColumns+` FROM natal_charts ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		err = r.db.SelectContext(ctx, &rows,
			`SELECT `+chartColumns+` FROM natal_charts WHERE created_at > $1 ORDER BY created_at DESC LIMIT $2`, since, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}

	out := make([]*models.NatalChart, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *PGChartRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM natal_charts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
