package experience

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRepo struct {
	mu      sync.Mutex
	items   map[string]Experience
	writes  int
	failErr error
}

func newFakeRepo(items ...Experience) *fakeRepo {
	r := &fakeRepo{items: make(map[string]Experience)}
	for _, e := range items {
		r.items[e.ID] = e
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, exp *Experience) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if _, ok := r.items[exp.ID]; ok {
		return ErrDuplicateID
	}
	r.items[exp.ID] = *exp
	r.writes++
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *fakeRepo) sorted() []*Experience {
	out := make([]*Experience, 0, len(r.items))
	for _, e := range r.items {
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeRepo) List(ctx context.Context, pagination *Pagination) ([]*Experience, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	start := pagination.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + pagination.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r *fakeRepo) ListAll(ctx context.Context) ([]*Experience, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(), nil
}

func (r *fakeRepo) Update(ctx context.Context, exp *Experience, fields []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	row, ok := r.items[exp.ID]
	if !ok {
		return ErrExperienceNotFound
	}
	for _, f := range fields {
		switch f {
		case fieldTitle:
			row.Title = exp.Title
		case fieldCompany:
			row.Company = exp.Company
		case fieldLocation:
			row.Location = exp.Location
		case fieldLat:
			row.Lat = exp.Lat
		case fieldLon:
			row.Lon = exp.Lon
		case fieldDescription:
			row.Description = exp.Description
		case fieldResponsibilities:
			row.Responsibilities = exp.Responsibilities
		case fieldTechnologies:
			row.Technologies = exp.Technologies
		case fieldStartDate:
			row.StartDate = exp.StartDate
		case fieldEndDate:
			row.EndDate = exp.EndDate
		case fieldEmploymentType:
			row.EmploymentType = exp.EmploymentType
		case fieldIsCurrent:
			row.IsCurrent = exp.IsCurrent
		}
	}
	row.UpdatedAt = exp.UpdatedAt
	r.items[exp.ID] = row
	r.writes++
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrExperienceNotFound
	}
	delete(r.items, id)
	r.writes++
	return nil
}

func mustCreateInput(t *testing.T, raw string) CreateInput {
	t.Helper()
	in, err := ValidateCreate([]byte(raw))
	if err != nil {
		t.Fatalf("invalid input: %v", err)
	}
	return in
}

func TestServiceCreateAndGet(t *testing.T) {
	repo := newFakeRepo()
	factory, _ := testFactory()
	svc := NewService(repo, nil, factory)
	ctx := context.Background()

	created, err := svc.Create(ctx, mustCreateInput(t, minimalCreate))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Engineer" || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestServiceGetByIDErrors(t *testing.T) {
	factory, _ := testFactory()
	svc := NewService(newFakeRepo(), nil, factory)

	if _, err := svc.GetByID(context.Background(), "xyz"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "5f1d7f1e2a3b4c5d6e7f8091"); !errors.Is(err, ErrExperienceNotFound) {
		t.Fatalf("expected ErrExperienceNotFound, got %v", err)
	}
}

func TestServiceUpdateRefreshesUpdatedAt(t *testing.T) {
	stored := sampleStored(t)
	repo := newFakeRepo(stored)
	factory, clock := testFactory()
	svc := NewService(repo, nil, factory)
	ctx := context.Background()

	clock.Advance(90 * time.Minute)

	patch, err := ValidateUpdate([]byte(`{"title":"Principal Engineer"}`))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	updated, err := svc.Update(ctx, stored.ID, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "Principal Engineer" {
		t.Fatalf("title not applied: %q", updated.Title)
	}
	if !updated.CreatedAt.Equal(stored.CreatedAt) {
		t.Fatal("created_at must not change")
	}
	if updated.UpdatedAt.Sub(stored.UpdatedAt) != 90*time.Minute {
		t.Fatalf("updated_at not refreshed: %v", updated.UpdatedAt)
	}
	if repo.items[stored.ID].Title != "Principal Engineer" {
		t.Fatal("update not persisted")
	}
}

func TestServiceUpdateEmptyPatchSkipsWrite(t *testing.T) {
	stored := sampleStored(t)
	repo := newFakeRepo(stored)
	factory, clock := testFactory()
	svc := NewService(repo, nil, factory)

	clock.Advance(time.Hour)

	got, err := svc.Update(context.Background(), stored.ID, UpdateInput{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("expected no writes, got %d", repo.writes)
	}
	if !got.UpdatedAt.Equal(stored.UpdatedAt) {
		t.Fatal("empty patch must not touch updated_at")
	}
}

func TestServiceDelete(t *testing.T) {
	stored := sampleStored(t)
	repo := newFakeRepo(stored)
	factory, _ := testFactory()
	svc := NewService(repo, nil, factory)
	ctx := context.Background()

	if err := svc.Delete(ctx, stored.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, stored.ID); !errors.Is(err, ErrExperienceNotFound) {
		t.Fatalf("expected ErrExperienceNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "bad"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestServiceListRecentAndLocations(t *testing.T) {
	repo := newFakeRepo()
	factory, _ := testFactory()
	svc := NewService(repo, nil, factory)
	ctx := context.Background()

	for _, raw := range []string{
		`{"title":"a","company":"x","description":"d","start_date":"2018-01-01","location":"Almaty","lat":43.2,"lon":76.9}`,
		`{"title":"b","company":"x","description":"d","start_date":"2020-01-01","location":"Almaty","lat":43.2,"lon":76.9}`,
		`{"title":"c","company":"x","description":"d","start_date":"2022-01-01","location":"Remote"}`,
		`{"title":"d","company":"x","description":"d","start_date":"2019-01-01","location":"Berlin","lat":52.5,"lon":13.4}`,
	} {
		if _, err := svc.Create(ctx, mustCreateInput(t, raw)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, total, err := svc.List(ctx, &Pagination{Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 || len(page) != 1 || page[0].Title != "a" {
		t.Fatalf("unexpected page: total=%d items=%d", total, len(page))
	}

	recent, err := svc.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 || recent[0].Title != "c" || recent[2].Title != "d" {
		t.Fatalf("unexpected recent order")
	}

	groups, err := svc.Locations(ctx)
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if len(groups) != 2 || groups[0].Location != "Almaty" || len(groups[0].Experiences) != 2 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}

func TestServiceSurvivesCacheFailures(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	stored := sampleStored(t)
	factory, _ := testFactory()
	svc := NewService(newFakeRepo(stored), NewCache(client, time.Minute), factory)

	got, err := svc.GetByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("cache failure must not fail reads: %v", err)
	}
	if got.ID != stored.ID {
		t.Fatalf("unexpected record %s", got.ID)
	}
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if got, err := c.Get(ctx, "id"); got != nil || err != nil {
		t.Fatalf("expected miss, got %v %v", got, err)
	}
	if err := c.Set(ctx, &Experience{ID: "id"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := NewCache(nil, time.Minute).Invalidate(ctx, "id"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}
