package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/searchpulse/internal/domain/entities"
)

// SearchEventRepository is the durable store of search-log records. Aggregate
// queries match terms case-insensitively at the query level; a nil since
// means no lower time bound.
type SearchEventRepository interface {
	Create(ctx context.Context, event *entities.SearchEvent) error
	GetByID(ctx context.Context, id string) (*entities.SearchEvent, error)

	// Update overwrites the mutable fields (term, search type, user agent)
	// of an existing event. Identity fields and created_at are not touched.
	Update(ctx context.Context, event *entities.SearchEvent) error

	// SetSearchResult records a click-through on an existing event.
	SetSearchResult(ctx context.Context, id string, resultType entities.SearchResultType, resultID string) error

	Count(ctx context.Context) (int64, error)

	// DeleteOldest removes the n oldest events by created_at (id as
	// tie-break) and returns how many rows were deleted.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// TermBuckets returns per-calendar-date (UTC) counts of events matching
	// the term, ordered by date ascending. Dates with no events are omitted.
	TermBuckets(ctx context.Context, term string, since *time.Time, filter entities.TermFilter) ([]entities.DateCount, error)

	// Trending returns per-term search and click-through counts ordered by
	// searches descending, term ascending. Terms are merged case-insensitively.
	Trending(ctx context.Context, since *time.Time, limit int) ([]entities.TrendingTerm, error)
}
