package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	"AstroChart/pkg/postgres"

	"github.com/jmoiron/sqlx"
)

type PGAdminRepository struct {
	db *sqlx.DB
}

var _ domrepo.AdminRepository = (*PGAdminRepository)(nil)

func NewPGAdminRepository(db *sqlx.DB) *PGAdminRepository {
	return &PGAdminRepository{db: db}
}

// Create inserts an admin. A taken username yields models.ErrConflict.
func (r *PGAdminRepository) Create(ctx context.Context, a *models.Admin) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO admins (id, username, password_hash, created_at) VALUES (:id, :username, :password_hash, :created_at)`, a)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("admin %q: %w", a.Username, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *PGAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	err := r.db.GetContext(ctx, &a,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}
