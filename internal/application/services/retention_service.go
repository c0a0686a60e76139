package services

import (
	"context"
	"time"

	"github.com/zatekoja/searchpulse/internal/domain/repositories"
	"github.com/zatekoja/searchpulse/internal/infrastructure/observability"
)

// RetentionService bounds the stored event count. It deletes oldest-first and
// never more than the excess, so the most recent max-size events survive
// exactly. Runs outside the logging hot path; racing with concurrent logging
// is fine, the cap is best-effort.
type RetentionService struct {
	repo     repositories.SearchEventRepository
	settings *SiteSettings
	metrics  *observability.Metrics
}

// NewRetentionService creates the retention manager. metrics may be nil.
func NewRetentionService(
	repo repositories.SearchEventRepository,
	settings *SiteSettings,
	metrics *observability.Metrics,
) *RetentionService {
	return &RetentionService{repo: repo, settings: settings, metrics: metrics}
}

// CleanUp deletes the oldest events beyond the configured maximum and
// returns how many were removed.
func (s *RetentionService) CleanUp(ctx context.Context) (int64, error) {
	maxSize := s.settings.SearchLogMaxSize()

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count <= maxSize {
		return 0, nil
	}

	deleted, err := s.repo.DeleteOldest(ctx, count-maxSize)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordPruned(ctx, deleted)
	return deleted, nil
}

// Run enforces the cap on a fixed interval until the context is done.
func (s *RetentionService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.CleanUp(ctx)
			if err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).
					Msg("search log cleanup failed")
				continue
			}
			if deleted > 0 {
				observability.LoggerFromContext(ctx).Info().Int64("deleted", deleted).
					Msg("pruned old search events")
			}
		}
	}
}
