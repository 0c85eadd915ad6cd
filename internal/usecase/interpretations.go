package usecase

import (
	"context"
	"fmt"
	"time"

	"AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	"AstroChart/internal/service/metrics"
	"AstroChart/pkg/cache"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxInterpretationList caps interpretation listings.
const MaxInterpretationList = 1000

type InterpretationsUseCase struct {
	repo       domrepo.InterpretationRepository
	charts     *ChartsUseCase
	cache      cache.Service
	readingTTL time.Duration
	now        func() time.Time
	newID      func() string
}

type InterpretationsOption func(*InterpretationsUseCase)

// WithReadingCache caches chart readings. Any interpretation write drops
// every cached reading.
func WithReadingCache(c cache.Service, ttl time.Duration) InterpretationsOption {
	return func(u *InterpretationsUseCase) {
		u.cache = c
		if ttl > 0 {
			u.readingTTL = ttl
		}
	}
}

func NewInterpretationsUseCase(repo domrepo.InterpretationRepository, charts *ChartsUseCase, opts ...InterpretationsOption) *InterpretationsUseCase {
	u := &InterpretationsUseCase{
		repo:       repo,
		charts:     charts,
		readingTTL: time.Hour,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *InterpretationsUseCase) Create(ctx context.Context, in models.InterpretationCreate) (*models.Interpretation, error) {
	now := u.now().UTC()
	it := &models.Interpretation{
		ID:        u.newID(),
		Category:  in.Category,
		Key:       in.Key,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.repo.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("create interpretation: %w", err)
	}
	u.dropReadings(ctx)
	return it, nil
}

// List returns interpretations, all categories when category is empty.
func (u *InterpretationsUseCase) List(ctx context.Context, category string) ([]*models.Interpretation, error) {
	items, err := u.repo.List(ctx, category, MaxInterpretationList)
	if err != nil {
		return nil, fmt.Errorf("list interpretations: %w", err)
	}
	return items, nil
}

func (u *InterpretationsUseCase) Get(ctx context.Context, id string) (*models.Interpretation, error) {
	it, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get interpretation %s: %w", id, err)
	}
	return it, nil
}

// Update applies the non-nil fields of upd.
func (u *InterpretationsUseCase) Update(ctx context.Context, id string, upd models.InterpretationUpdate) (*models.Interpretation, error) {
	it, err := u.repo.Update(ctx, id, upd, u.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update interpretation %s: %w", id, err)
	}
	u.dropReadings(ctx)
	return it, nil
}

func (u *InterpretationsUseCase) Delete(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete interpretation %s: %w", id, err)
	}
	u.dropReadings(ctx)
	return nil
}

// ForChart collects the interpretations matching a stored chart's signs,
// houses and aspects, in that order.
func (u *InterpretationsUseCase) ForChart(ctx context.Context, chartID string) (*models.ChartReading, error) {
	if u.cache == nil {
		return u.reading(ctx, chartID)
	}
	r, hit, err := cache.GetOrLoad(ctx, u.cache, readingKey(chartID), u.readingTTL, func(ctx context.Context) (*models.ChartReading, error) {
		return u.reading(ctx, chartID)
	})
	metrics.CacheResult("reading", hit)
	return r, err
}

// dropReadings is best effort: a failed purge leaves readings stale for at
// most readingTTL.
func (u *InterpretationsUseCase) dropReadings(ctx context.Context) {
	if u.cache != nil {
		_ = u.cache.DeleteByPattern(ctx, cache.BuildPattern("reading"))
	}
}

func (u *InterpretationsUseCase) reading(ctx context.Context, chartID string) (*models.ChartReading, error) {
	nc, err := u.charts.GetChart(ctx, chartID)
	if err != nil {
		return nil, err
	}

	var signKeys, houseKeys, aspectKeys []string
	for _, p := range nc.HouseBearing() {
		signKeys = append(signKeys, models.SignKey(p.Name, p.Sign))
		if p.House != nil {
			houseKeys = append(houseKeys, models.HouseKey(p.Name, *p.House))
		}
	}
	for _, a := range nc.Aspects {
		aspectKeys = append(aspectKeys, models.AspectKey(a))
	}

	lookups := []struct {
		category string
		keys     []string
	}{
		{models.CategoryPlanetInSign, signKeys},
		{models.CategoryPlanetInHouse, houseKeys},
		{models.CategoryAspect, aspectKeys},
	}
	found := make([][]*models.Interpretation, len(lookups))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lookups {
		i, l := i, l
		if len(l.keys) == 0 {
			continue
		}
		g.Go(func() error {
			items, err := u.repo.FindByKeys(gctx, l.category, l.keys)
			if err != nil {
				return fmt.Errorf("find %s interpretations: %w", l.category, err)
			}
			found[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reading := &models.ChartReading{ChartID: chartID, Items: []models.Interpretation{}}
	for _, items := range found {
		for _, it := range items {
			reading.Items = append(reading.Items, *it)
		}
	}
	return reading, nil
}
