package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/escolalab/gestao-escolar-api/internal/models"
	appErrors "github.com/escolalab/gestao-escolar-api/pkg/errors"
)

const statsCacheKey = "stats:overview"

type statsRepository interface {
	Totals(ctx context.Context) (total, active, inactive, classes int, err error)
	PerClass(ctx context.Context) ([]models.ClassOccupancy, error)
}

// StatsService composes the aggregate statistics payload, caching it between
// mutations.
type StatsService struct {
	repo   statsRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	ttl    time.Duration
}

// NewStatsService constructs StatsService.
func NewStatsService(repo statsRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsService{repo: repo, cache: cache, logger: logger, now: time.Now, ttl: ttl}
}

// Overview returns system totals and per-class occupancy.
func (s *StatsService) Overview(ctx context.Context) (*models.Stats, error) {
	var cached models.Stats
	if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	total, active, inactive, classes, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats totals")
	}

	perClass, err := s.repo.PerClass(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute class occupancy")
	}
	for i := range perClass {
		if perClass[i].Capacity > 0 {
			pct := float64(perClass[i].Occupancy) / float64(perClass[i].Capacity) * 100
			perClass[i].OccupancyPercent = math.Round(pct*10) / 10
		}
	}

	stats := &models.Stats{
		TotalStudents:    total,
		ActiveStudents:   active,
		InactiveStudents: inactive,
		TotalClasses:     classes,
		Classes:          perClass,
		GeneratedAt:      s.now().UTC(),
	}

	if err := s.cache.Set(ctx, statsCacheKey, stats, s.ttl); err != nil {
		s.logger.Warn("failed to cache stats overview", zap.Error(err))
	}

	return stats, nil
}

// Invalidate drops the cached overview. Mutating services call this after
// any committed transition that changes the counters.
func (s *StatsService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
