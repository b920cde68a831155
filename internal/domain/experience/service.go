package experience

import (
	"context"
	"errors"

	"github.com/mwork/experience-api/internal/pkg/logger"
	"github.com/mwork/experience-api/internal/pkg/objectid"
)

// Service handles experience business logic
type Service struct {
	repo    Repository
	cache   *Cache
	factory Factory
}

// NewService creates experience service
func NewService(repo Repository, cache *Cache, factory Factory) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		factory: factory,
	}
}

// Create stores a new record built from validated input
func (s *Service) Create(ctx context.Context, in CreateInput) (*Experience, error) {
	exp := s.factory.ToStored(in)

	if err := s.repo.Create(ctx, &exp); err != nil {
		return nil, err
	}

	s.remember(ctx, &exp)
	logger.LogInfo(ctx, "Experience created", "experience_id", exp.ID)
	return &exp, nil
}

// GetByID returns a record by identifier
func (s *Service) GetByID(ctx context.Context, id string) (*Experience, error) {
	id, err := objectid.Normalize(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.LogWarn(ctx, "Experience cache read failed", "experience_id", id, "error", err.Error())
	}
	if cached != nil {
		logger.LogDebug(ctx, "Experience cache hit", "experience_id", id)
		return cached, nil
	}

	exp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, ErrExperienceNotFound
	}

	s.remember(ctx, exp)
	return exp, nil
}

// List returns a page of records, newest start date first
func (s *Service) List(ctx context.Context, pagination *Pagination) ([]*Experience, int, error) {
	return s.repo.List(ctx, pagination)
}

// Recent returns up to n records with the latest start dates
func (s *Service) Recent(ctx context.Context, n int) ([]*Experience, error) {
	items, _, err := s.repo.List(ctx, &Pagination{Page: 1, Limit: n})
	if err != nil {
		return nil, err
	}
	return Recent(items, n), nil
}

// Locations groups all geolocated records by location
func (s *Service) Locations(ctx context.Context) ([]LocationGroup, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByLocation(items), nil
}

// Update merges a validated patch into the stored record and writes only
// the supplied columns. The base record always comes from storage, never
// from the cache. An empty patch returns the record unchanged without a write.
func (s *Service) Update(ctx context.Context, id string, patch UpdateInput) (*Experience, error) {
	id, err := objectid.Normalize(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		s.forget(ctx, id)
		return nil, ErrExperienceNotFound
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated := patch.Apply(*current)
	updated.UpdatedAt = s.factory.Now()

	if err := s.repo.Update(ctx, &updated, patch.Fields()); err != nil {
		if errors.Is(err, ErrExperienceNotFound) {
			s.forget(ctx, id)
		}
		return nil, err
	}

	s.remember(ctx, &updated)
	logger.LogInfo(ctx, "Experience updated", "experience_id", updated.ID, "fields", patch.Fields())
	return &updated, nil
}

// Delete removes a record
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := objectid.Normalize(id)
	if err != nil {
		return ErrInvalidID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.forget(ctx, id)
	logger.LogInfo(ctx, "Experience deleted", "experience_id", id)
	return nil
}

// remember caches exp. A failed write drops the key so readers fall back
// to storage instead of an older copy.
func (s *Service) remember(ctx context.Context, exp *Experience) {
	if err := s.cache.Set(ctx, exp); err != nil {
		logger.LogWarn(ctx, "Experience cache write failed", "experience_id", exp.ID, "error", err.Error())
		s.forget(ctx, exp.ID)
	}
}

func (s *Service) forget(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.LogWarn(ctx, "Experience cache invalidation failed", "experience_id", id, "error", err.Error())
	}
}
