package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/searchpulse/internal/domain/entities"
	"github.com/zatekoja/searchpulse/internal/domain/providers"
	"github.com/zatekoja/searchpulse/internal/domain/repositories"
	"github.com/zatekoja/searchpulse/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/searchpulse/pkg/errors"
)

// Validation failures returned by Log and RecordClickThrough. Callers branch
// on these rather than on error strings.
var (
	ErrInvalidSearchType = apperrors.NewValidationError("unrecognized search type")
	ErrMissingActor      = apperrors.NewValidationError("search event has no actor identity")
	ErrMissingResultID   = apperrors.NewValidationError("click-through has no result id")
	ErrInvalidResultType = apperrors.NewValidationError("unrecognized search result type")
)

// LogRequest carries one incoming search to be logged. IPAddress and UserID
// are both optional individually, but at least one must be present.
type LogRequest struct {
	Term       string
	SearchType entities.SearchType
	IPAddress  string
	UserAgent  string
	UserID     string
}

// SearchLogService validates incoming searches and writes them to the event
// store, collapsing repeats from the same actor within the debounce window
// into a single record.
type SearchLogService struct {
	repo    repositories.SearchEventRepository
	cache   providers.CacheProvider
	clock   providers.ClockProvider
	window  time.Duration
	metrics *observability.Metrics
}

// NewSearchLogService creates the logger. metrics may be nil.
func NewSearchLogService(
	repo repositories.SearchEventRepository,
	cache providers.CacheProvider,
	clock providers.ClockProvider,
	window time.Duration,
	metrics *observability.Metrics,
) *SearchLogService {
	return &SearchLogService{
		repo:    repo,
		cache:   cache,
		clock:   clock,
		window:  window,
		metrics: metrics,
	}
}

// Log records a search. It returns ActionCreated with a fresh event id on the
// first search from an actor within the window, and ActionUpdated with the
// existing id when the actor refines their query inside the window. On
// validation failure it returns ActionError and no id; nothing is written.
func (s *SearchLogService) Log(ctx context.Context, req LogRequest) (entities.Action, string, error) {
	if !req.SearchType.Valid() {
		return entities.ActionError, "", ErrInvalidSearchType
	}
	if req.IPAddress == "" && req.UserID == "" {
		return entities.ActionError, "", ErrMissingActor
	}

	ctx, span := observability.StartSpan(ctx, "search_log.log")
	defer span.End()

	key := entities.DebounceKey(req.IPAddress, req.UserID)
	newID := uuid.New().String()

	// The atomic get-or-set is the serialization point: of two concurrent
	// first searches from one actor, exactly one claims the slot.
	eventID, claimed, err := s.cache.GetOrSet(ctx, key, newID, s.window)
	if err != nil {
		// The store write must still happen when the cache is down. The
		// worst case is one duplicate row per window, which retention
		// bounds anyway.
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Msg("debounce cache unavailable, logging without dedup")
		eventID, claimed = newID, true
	}

	if claimed {
		s.metrics.RecordDebounceMiss(ctx)
		return s.create(ctx, req, eventID, key)
	}
	s.metrics.RecordDebounceHit(ctx)
	return s.update(ctx, req, eventID, key)
}

func (s *SearchLogService) update(ctx context.Context, req LogRequest, id, key string) (entities.Action, string, error) {
	event, err := s.repo.GetByID(ctx, id)
	if apperrors.IsNotFound(err) {
		// The slot holder's row is gone: either a crash between the cache
		// and store writes, or retention pruned it. Recreate under the
		// cached id so the debounce entry stays truthful.
		return s.create(ctx, req, id, key)
	}
	if err != nil {
		return entities.ActionError, "", err
	}

	event.Term = req.Term
	event.SearchType = req.SearchType
	if req.UserAgent != "" {
		event.UserAgent = req.UserAgent
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return entities.ActionError, "", err
	}

	// Re-arm the window so continued refinement keeps squashing.
	if err := s.cache.Expire(ctx, key, s.window); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Msg("failed to re-arm debounce entry")
	}

	s.metrics.RecordAction(ctx, string(entities.ActionUpdated))
	return entities.ActionUpdated, event.ID, nil
}

func (s *SearchLogService) create(ctx context.Context, req LogRequest, id, key string) (entities.Action, string, error) {
	event := &entities.SearchEvent{
		ID:         id,
		Term:       req.Term,
		SearchType: req.SearchType,
		UserAgent:  req.UserAgent,
		CreatedAt:  s.clock.Now().UTC(),
	}
	// The actor is the user when one is known; the address is then not
	// persisted at all.
	if req.UserID != "" {
		event.UserID = req.UserID
	} else {
		event.IPAddress = req.IPAddress
	}

	if err := s.repo.Create(ctx, event); err != nil {
		if apperrors.IsConflict(err) {
			// A concurrent call for the same actor got its insert in
			// between this call's claim and its write. The row exists
			// under this id now, so fold into the update this call would
			// have been.
			return s.update(ctx, req, id, key)
		}
		return entities.ActionError, "", err
	}
	s.metrics.RecordAction(ctx, string(entities.ActionCreated))
	return entities.ActionCreated, event.ID, nil
}

// RecordClickThrough marks an existing event as clicked through to a result.
func (s *SearchLogService) RecordClickThrough(ctx context.Context, eventID string, resultType entities.SearchResultType, resultID string) error {
	if resultID == "" {
		return ErrMissingResultID
	}
	if !resultType.Valid() {
		return ErrInvalidResultType
	}
	return s.repo.SetSearchResult(ctx, eventID, resultType, resultID)
}

// ClearDebounceCache drops every debounce entry. Administrative reset only;
// stored events are untouched.
func (s *SearchLogService) ClearDebounceCache(ctx context.Context) error {
	return s.cache.DeletePattern(ctx, entities.DebounceKeyPattern)
}
