package services

import (
	"context"
	"time"

	"github.com/zatekoja/searchpulse/internal/domain/entities"
	"github.com/zatekoja/searchpulse/internal/domain/providers"
	"github.com/zatekoja/searchpulse/internal/domain/repositories"
	"github.com/zatekoja/searchpulse/internal/infrastructure/observability"
)

// trendingLimit caps the trending ranking.
const trendingLimit = 100

// SearchAnalyticsService aggregates stored search events into per-term
// statistics. Periods are trailing windows measured from the injected clock.
type SearchAnalyticsService struct {
	repo    repositories.SearchEventRepository
	clock   providers.ClockProvider
	metrics *observability.Metrics
}

// NewSearchAnalyticsService creates the analytics engine. metrics may be nil.
func NewSearchAnalyticsService(
	repo repositories.SearchEventRepository,
	clock providers.ClockProvider,
	metrics *observability.Metrics,
) *SearchAnalyticsService {
	return &SearchAnalyticsService{repo: repo, clock: clock, metrics: metrics}
}

// TermDetails returns the per-day search counts for one term. Matching is
// case-insensitive and buckets are UTC calendar dates of created_at, so two
// events an hour either side of a day's midpoint land in the same bucket.
// Days with no matching events are omitted from the series.
func (s *SearchAnalyticsService) TermDetails(ctx context.Context, term string, period entities.Period, filter entities.TermFilter) (*entities.TermDetails, error) {
	ctx, span := observability.StartSpan(ctx, "search_log.term_details")
	defer span.End()

	start := time.Now()
	buckets, err := s.repo.TermBuckets(ctx, term, s.since(period), filter)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStoreQuery(ctx, "term_buckets", time.Since(start))

	return &entities.TermDetails{
		Term:   term,
		Period: period,
		Data:   buckets,
	}, nil
}

// Trending returns the most-searched terms within the period, case-insensitively
// merged, ordered by search count descending with term as the deterministic
// tie-break. Events outside the window contribute to neither count.
func (s *SearchAnalyticsService) Trending(ctx context.Context, period entities.Period) ([]entities.TrendingTerm, error) {
	ctx, span := observability.StartSpan(ctx, "search_log.trending")
	defer span.End()

	start := time.Now()
	trending, err := s.repo.Trending(ctx, s.since(period), trendingLimit)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStoreQuery(ctx, "trending", time.Since(start))
	return trending, nil
}

// since converts a period into an absolute lower bound, nil for unbounded.
func (s *SearchAnalyticsService) since(period entities.Period) *time.Time {
	window, bounded := period.Window()
	if !bounded {
		return nil
	}
	t := s.clock.Now().UTC().Add(-window)
	return &t
}
