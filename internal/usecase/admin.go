package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"

	"github.com/google/uuid"
)

// Authenticator hashes passwords and issues bearer tokens.
type Authenticator interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
	Issue(username string) (models.Token, error)
	Verify(token string) (string, error)
}

type AdminUseCase struct {
	repo  domrepo.AdminRepository
	auth  Authenticator
	now   func() time.Time
	newID func() string
}

func NewAdminUseCase(repo domrepo.AdminRepository, auth Authenticator) *AdminUseCase {
	return &AdminUseCase{repo: repo, auth: auth, now: time.Now, newID: uuid.NewString}
}

// Register creates an admin account and signs it in.
func (u *AdminUseCase) Register(ctx context.Context, cred models.AdminCredentials) (models.Token, error) {
	if _, err := u.repo.GetByUsername(ctx, cred.Username); err == nil {
		return models.Token{}, fmt.Errorf("admin %q: %w", cred.Username, models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.Token{}, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := u.auth.HashPassword(cred.Password)
	if err != nil {
		return models.Token{}, err
	}
	a := &models.Admin{
		ID:           u.newID(),
		Username:     cred.Username,
		PasswordHash: hash,
		CreatedAt:    u.now().UTC(),
	}
	// a concurrent registration surfaces as ErrConflict from the unique index
	if err := u.repo.Create(ctx, a); err != nil {
		return models.Token{}, fmt.Errorf("create admin: %w", err)
	}
	return u.auth.Issue(a.Username)
}

func (u *AdminUseCase) Login(ctx context.Context, cred models.AdminCredentials) (models.Token, error) {
	a, err := u.repo.GetByUsername(ctx, cred.Username)
	if errors.Is(err, models.ErrNotFound) {
		return models.Token{}, models.ErrUnauthorized
	}
	if err != nil {
		return models.Token{}, fmt.Errorf("lookup admin: %w", err)
	}
	if !u.auth.CheckPassword(a.PasswordHash, cred.Password) {
		return models.Token{}, models.ErrUnauthorized
	}
	return u.auth.Issue(a.Username)
}

// Authenticate resolves a bearer token to a still existing admin.
func (u *AdminUseCase) Authenticate(ctx context.Context, token string) (*models.Admin, error) {
	username, err := u.auth.Verify(token)
	if err != nil {
		return nil, err
	}
	a, err := u.repo.GetByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("admin %q removed: %w", username, models.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	return a, nil
}
