package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const interpretationColumns = `id, category, key, title, content, created_at, updated_at`

type PGInterpretationRepository struct {
	db *sqlx.DB
}

var _ domrepo.InterpretationRepository = (*PGInterpretationRepository)(nil)

func NewPGInterpretationRepository(db *sqlx.DB) *PGInterpretationRepository {
	return &PGInterpretationRepository{db: db}
}

func (r *PGInterpretationRepository) Create(ctx context.Context, i *models.Interpretation) error {
	const q = `INSERT INTO interpretations (` + interpretationColumns + `)
		VALUES (:id, :category, :key, :title, :content, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, i); err != nil {
		return fmt.Errorf("insert interpretation: %w", err)
	}
	return nil
}

func (r *PGInterpretationRepository) Get(ctx context.Context, id string) (*models.Interpretation, error) {
	var i models.Interpretation
	err := r.db.GetContext(ctx, &i, `SELECT `+interpretationColumns+` FROM interpretations WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get interpretation: %w", err)
	}
	return &i, nil
}

// List returns interpretations ordered by category and key. An empty
// category returns every category.
func (r *PGInterpretationRepository) List(ctx context.Context, category string, limit int) ([]*models.Interpretation, error) {
	out := []*models.Interpretation{}
	var err error
	if category == "" {
		err = r.db.SelectContext(ctx, &out,
			`SELECT `+interpretationColumns+` FROM interpretations ORDER BY category, key LIMIT $1`, limit)
	} else {
		err = r.db.SelectContext(ctx, &out,
			`SELECT `+interpretationColumns+` FROM interpretations WHERE category = $1 ORDER BY key LIMIT $2`, category, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list interpretations: %w", err)
	}
	return out, nil
}

// Update overwrites only the fields set in upd and stamps updated_at.
func (r *PGInterpretationRepository) Update(ctx context.Context, id string, upd models.InterpretationUpdate, at time.Time) (*models.Interpretation, error) {
	const q = `UPDATE interpretations
		SET title = COALESCE($1, title), content = COALESCE($2, content), updated_at = $3
		WHERE id = $4
		RETURNING ` + interpretationColumns
	var i models.Interpretation
	err := r.db.GetContext(ctx, &i, q, upd.Title, upd.Content, at, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update interpretation: %w", err)
	}
	return &i, nil
}

func (r *PGInterpretationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM interpretations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete interpretation: %w", err)
	}
	return expectAffected(res)
}

func (r *PGInterpretationRepository) FindByKeys(ctx context.Context, category string, keys []string) ([]*models.Interpretation, error) {
	out := []*models.Interpretation{}
	if len(keys) == 0 {
		return out, nil
	}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+interpretationColumns+` FROM interpretations WHERE category = $1 AND key = ANY($2) ORDER BY key`,
		category, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("find interpretations: %w", err)
	}
	return out, nil
}
