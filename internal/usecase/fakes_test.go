package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"AstroChart/internal/domain/models"
)

func intp(v int) *int { return &v }

// stubCalculator returns a fixed chart with a Sun in Taurus, Moon in Cancer and Libra rising.
type stubCalculator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubCalculator) Compute(_ context.Context, in models.ChartInput) (models.Chart, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return models.Chart{}, s.err
	}
	return models.Chart{
		Planets: []models.BodyPosition{
			{Name: models.NameAscendant, Kind: models.PointAngle, Longitude: 190, Sign: models.Libra},
			{Name: models.NameMidheaven, Kind: models.PointAngle, Longitude: 100, Sign: models.Cancer},
			{Name: models.NameSun, Kind: models.PointBody, Longitude: 54.4, Sign: models.Taurus, House: intp(8)},
			{Name: models.NameMoon, Kind: models.PointBody, Longitude: 114.0, Sign: models.Cancer, House: intp(10)},
		},
		Aspects: []models.Aspect{
			{Planet1: models.NameSun, Planet2: models.NameMoon, AspectType: models.Sextile, Angle: 59.6, Orb: 0.4},
		},
		HouseSystem: "placidus",
		UTC:         time.Date(1990, 5, 15, 11, 30, 0, 0, time.UTC),
	}, nil
}

func (s *stubCalculator) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type memChartRepo struct {
	mu     sync.Mutex
	charts map[string]*models.NatalChart
	gets   int
	err    error
	// failOnce makes the first Create of a chart with this name fail.
	failOnce string
}

func newMemChartRepo() *memChartRepo {
	return &memChartRepo{charts: map[string]*models.NatalChart{}}
}

func (r *memChartRepo) Create(_ context.Context, c *models.NatalChart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.failOnce != "" && c.Name == r.failOnce {
		r.failOnce = ""
		return errors.New("transient db error")
	}
	r.charts[c.ID] = c
	return nil
}

func (r *memChartRepo) Get(_ context.Context, id string) (*models.NatalChart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	c, ok := r.charts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return c, nil
}

func (r *memChartRepo) List(_ context.Context, since time.Time, limit int) ([]*models.NatalChart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.NatalChart, 0, len(r.charts))
	for _, c := range r.charts {
		if c.CreatedAt.After(since) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memChartRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.charts[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.charts, id)
	return nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	computed int
	errors   map[string]int
	events   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{errors: map[string]int{}, events: map[string]int{}}
}

func (m *recordingMetrics) RecordChartComputed(string, float64) {
	m.mu.Lock()
	m.computed++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordEventPublished(t string) {
	m.mu.Lock()
	m.events[t]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordLatency(string, float64) {}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.ChartEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *models.ChartEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) PublishBatch(ctx context.Context, events []*models.ChartEvent) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []*models.ChartEvent
}

func (b *recordingBroadcaster) Broadcast(e *models.ChartEvent) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

type recordingPositions struct {
	mu   sync.Mutex
	rows []*models.PositionRow
}

func (q *recordingPositions) Offer(rows []*models.PositionRow) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rows = append(q.rows, rows...)
	return len(rows)
}

type recordingJobs struct {
	msgType string
	payload interface{}
	err     error
}

func (j *recordingJobs) Enqueue(_ context.Context, msgType string, payload interface{}) (string, error) {
	if j.err != nil {
		return "", j.err
	}
	j.msgType, j.payload = msgType, payload
	return "job-1", nil
}

type memInterpretationRepo struct {
	mu    sync.Mutex
	items map[string]*models.Interpretation
	err   error
}

func newMemInterpretationRepo(items ...*models.Interpretation) *memInterpretationRepo {
	r := &memInterpretationRepo{items: map[string]*models.Interpretation{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *memInterpretationRepo) Create(_ context.Context, i *models.Interpretation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[i.ID] = i
	return nil
}

func (r *memInterpretationRepo) Get(_ context.Context, id string) (*models.Interpretation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return it, nil
}

func (r *memInterpretationRepo) List(_ context.Context, category string, limit int) ([]*models.Interpretation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Interpretation
	for _, it := range r.items {
		if category == "" || it.Category == category {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memInterpretationRepo) Update(_ context.Context, id string, upd models.InterpretationUpdate, at time.Time) (*models.Interpretation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *it
	if upd.Title != nil {
		cp.Title = *upd.Title
	}
	if upd.Content != nil {
		cp.Content = *upd.Content
	}
	cp.UpdatedAt = at
	r.items[id] = &cp
	return &cp, nil
}

func (r *memInterpretationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memInterpretationRepo) FindByKeys(_ context.Context, category string, keys []string) ([]*models.Interpretation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	want := map[string]bool{}
	for _, k := range keys {
		want[k] = true
	}
	var out []*models.Interpretation
	for _, it := range r.items {
		if it.Category == category && want[it.Key] {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type memAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*models.Admin
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: map[string]*models.Admin{}}
}

func (r *memAdminRepo) Create(_ context.Context, a *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[a.Username]; ok {
		return models.ErrConflict
	}
	r.admins[a.Username] = a
	return nil
}

func (r *memAdminRepo) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return a, nil
}
