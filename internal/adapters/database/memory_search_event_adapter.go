package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/searchpulse/internal/domain/entities"
	apperrors "github.com/zatekoja/searchpulse/pkg/errors"
)

// MemorySearchEventAdapter is an in-process SearchEventRepository. It mirrors
// the Postgres adapter's query semantics (case-insensitive term merging,
// date-only bucketing, oldest-first deletion) so service behavior can be
// verified without a database. Also usable for single-node embedded setups.
type MemorySearchEventAdapter struct {
	mu     sync.RWMutex
	events map[string]*entities.SearchEvent
}

// NewMemorySearchEventAdapter creates an empty in-memory event store.
func NewMemorySearchEventAdapter() *MemorySearchEventAdapter {
	return &MemorySearchEventAdapter{events: make(map[string]*entities.SearchEvent)}
}

func (a *MemorySearchEventAdapter) Create(ctx context.Context, event *entities.SearchEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.events[event.ID]; exists {
		return apperrors.NewConflictError("search event id already exists")
	}
	copied := *event
	a.events[event.ID] = &copied
	return nil
}

func (a *MemorySearchEventAdapter) GetByID(ctx context.Context, id string) (*entities.SearchEvent, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	event, ok := a.events[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("search event not found")
	}
	copied := *event
	return &copied, nil
}

func (a *MemorySearchEventAdapter) Update(ctx context.Context, event *entities.SearchEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.events[event.ID]
	if !ok {
		return apperrors.NewNotFoundError("search event not found")
	}
	existing.Term = event.Term
	existing.SearchType = event.SearchType
	existing.UserAgent = event.UserAgent
	return nil
}

func (a *MemorySearchEventAdapter) SetSearchResult(ctx context.Context, id string, resultType entities.SearchResultType, resultID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.events[id]
	if !ok {
		return apperrors.NewNotFoundError("search event not found")
	}
	existing.SearchResultID = resultID
	existing.SearchResultType = resultType
	return nil
}

func (a *MemorySearchEventAdapter) Count(ctx context.Context) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return int64(len(a.events)), nil
}

func (a *MemorySearchEventAdapter) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ordered := make([]*entities.SearchEvent, 0, len(a.events))
	for _, event := range a.events {
		ordered = append(ordered, event)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var deleted int64
	for _, event := range ordered {
		if deleted >= n {
			break
		}
		delete(a.events, event.ID)
		deleted++
	}
	return deleted, nil
}

func (a *MemorySearchEventAdapter) TermBuckets(ctx context.Context, term string, since *time.Time, filter entities.TermFilter) ([]entities.DateCount, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	want := strings.ToLower(term)
	counts := make(map[time.Time]int64)
	for _, event := range a.events {
		if strings.ToLower(event.Term) != want {
			continue
		}
		if since != nil && event.CreatedAt.Before(*since) {
			continue
		}
		if filter.SearchType != nil && event.SearchType != *filter.SearchType {
			continue
		}
		if filter.ClickThroughOnly && !event.ClickedThrough() {
			continue
		}
		counts[dateOf(event.CreatedAt)]++
	}

	buckets := make([]entities.DateCount, 0, len(counts))
	for day, count := range counts {
		buckets = append(buckets, entities.DateCount{X: day, Y: count})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].X.Before(buckets[j].X) })
	return buckets, nil
}

func (a *MemorySearchEventAdapter) Trending(ctx context.Context, since *time.Time, limit int) ([]entities.TrendingTerm, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	totals := make(map[string]*entities.TrendingTerm)
	for _, event := range a.events {
		if since != nil && event.CreatedAt.Before(*since) {
			continue
		}
		term := strings.ToLower(event.Term)
		row, ok := totals[term]
		if !ok {
			row = &entities.TrendingTerm{Term: term}
			totals[term] = row
		}
		row.Searches++
		if event.ClickedThrough() {
			row.ClickThrough++
		}
	}

	trending := make([]entities.TrendingTerm, 0, len(totals))
	for _, row := range totals {
		trending = append(trending, *row)
	}
	sort.Slice(trending, func(i, j int) bool {
		if trending[i].Searches != trending[j].Searches {
			return trending[i].Searches > trending[j].Searches
		}
		return trending[i].Term < trending[j].Term
	})
	if limit > 0 && len(trending) > limit {
		trending = trending[:limit]
	}
	return trending, nil
}

// dateOf collapses a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
