package api

import (
	"context"
	"sync"
	"time"

	models "AstroChart/internal/domain/models"
)

type stubCalculator struct{ err error }

func (s stubCalculator) Compute(_ context.Context, in models.ChartInput) (models.Chart, error) {
	if s.err != nil {
		return models.Chart{}, s.err
	}
	house := 8
	return models.Chart{
		Planets: []models.BodyPosition{
			{Name: models.NameAscendant, Kind: models.PointAngle, Longitude: 190, Sign: models.Libra},
			{Name: models.NameSun, Kind: models.PointBody, Longitude: 54.4, Sign: models.Taurus, House: &house},
		},
		Aspects:     []models.Aspect{},
		HouseSystem: "placidus",
	}, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordChartComputed(string, float64) {}
func (nopMetrics) RecordError(string) {}
func (nopMetrics) RecordEventPublished(string) {}
func (nopMetrics) RecordLatency(string, float64) {}

type memCharts struct {
	mu sync.Mutex
	m  map[string]*models.NatalChart
}

func (r *memCharts) Create(_ context.Context, c *models.NatalChart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[c.ID] = c
	return nil
}

func (r *memCharts) Get(_ context.Context, id string) (*models.NatalChart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.m[id]; ok {
		return c, nil
	}
	return nil, models.ErrNotFound
}

func (r *memCharts) List(_ context.Context, _ time.Time, limit int) ([]*models.NatalChart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.NatalChart{}
	for _, c := range r.m {
		if len(out) == limit {
			break
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memCharts) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.m, id)
	return nil
}

type memInterps struct {
	mu sync.Mutex
	m  map[string]*models.Interpretation
}

func (r *memInterps) Create(_ context.Context, i *models.Interpretation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[i.ID] = i
	return nil
}

func (r *memInterps) Get(_ context.Context, id string) (*models.Interpretation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.m[id]; ok {
		return i, nil
	}
	return nil, models.ErrNotFound
}

func (r *memInterps) List(_ context.Context, category string, _ int) ([]*models.Interpretation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Interpretation{}
	for _, i := range r.m {
		if category == "" || i.Category == category {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *memInterps) Update(_ context.Context, id string, upd models.InterpretationUpdate, at time.Time) (*models.Interpretation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.m[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if upd.Title != nil {
		i.Title = *upd.Title
	}
	if upd.Content != nil {
		i.Content = *upd.Content
	}
	i.UpdatedAt = at
	return i, nil
}

func (r *memInterps) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.m, id)
	return nil
}

func (r *memInterps) FindByKeys(_ context.Context, category string, keys []string) ([]*models.Interpretation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Interpretation
	for _, i := range r.m {
		for _, k := range keys {
			if i.Category == category && i.Key == k {
				out = append(out, i)
			}
		}
	}
	return out, nil
}

type memAdmins struct {
	mu sync.Mutex
	m  map[string]*models.Admin
}

func (r *memAdmins) Create(_ context.Context, a *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[a.Username]; ok {
		return models.ErrConflict
	}
	r.m[a.Username] = a
	return nil
}

func (r *memAdmins) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.m[username]; ok {
		return a, nil
	}
	return nil, models.ErrNotFound
}

type stubGeocoder struct {
	locs []models.Location
	err  error
}

func (g stubGeocoder) Search(_ context.Context, query string, limit int) ([]models.Location, error) {
	return g.locs, g.err
}
