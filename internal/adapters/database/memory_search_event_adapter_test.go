package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/searchpulse/internal/domain/entities"
	apperrors "github.com/zatekoja/searchpulse/pkg/errors"
)

func seedEvent(t *testing.T, repo *MemorySearchEventAdapter, id, term string, searchType entities.SearchType, createdAt time.Time) *entities.SearchEvent {
	t.Helper()
	event := &entities.SearchEvent{
		ID:         id,
		Term:       term,
		SearchType: searchType,
		IPAddress:  "127.0.0.1",
		CreatedAt:  createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func TestMemoryAdapter_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySearchEventAdapter()
	now := time.Date(2024, 5, 23, 18, 15, 30, 0, time.UTC)

	seedEvent(t, repo, "ev-1", "jabba", entities.SearchTypeHeader, now)

	got, err := repo.GetByID(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "jabba", got.Term)
	assert.Equal(t, entities.SearchTypeHeader, got.SearchType)
	assert.Equal(t, now, got.CreatedAt)
}

func TestMemoryAdapter_GetMissingIsNotFound(t *testing.T) {
	repo := NewMemorySearchEventAdapter()

	_, err := repo.GetByID(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryAdapter_UpdateOnlyTouchesMutableFields(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySearchEventAdapter()
	now := time.Date(2024, 5, 23, 18, 15, 30, 0, time.UTC)
	seedEvent(t, repo, "ev-1", "jabba", entities.SearchTypeHeader, now)

	require.NoError(t, repo.Update(ctx, &entities.SearchEvent{
		ID:         "ev-1",
		Term:       "jabba the hut",
		SearchType: entities.SearchTypeFullPage,
		UserAgent:  "Mozilla",
		CreatedAt:  now.Add(time.Hour), // must be ignored
	}))

	got, err := repo.GetByID(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "jabba the hut", got.Term)
	assert.Equal(t, entities.SearchTypeFullPage, got.SearchType)
	assert.Equal(t, "Mozilla", got.UserAgent)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, "127.0.0.1", got.IPAddress)
}

func TestMemoryAdapter_SetSearchResult(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySearchEventAdapter()
	now := time.Date(2024, 5, 23, 18, 15, 30, 0, time.UTC)
	seedEvent(t, repo, "ev-1", "ruby", entities.SearchTypeHeader, now)

	require.NoError(t, repo.SetSearchResult(ctx, "ev-1", entities.SearchResultTypeTopic, "24"))

	got, err := repo.GetByID(ctx, "ev-1")
	require.NoError(t, err)
	assert.True(t, got.ClickedThrough())
	assert.Equal(t, "24", got.SearchResultID)
	assert.Equal(t, entities.SearchResultTypeTopic, got.SearchResultType)

	err = repo.SetSearchResult(ctx, "missing", entities.SearchResultTypeTopic, "24")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryAdapter_DeleteOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySearchEventAdapter()
	base := time.Date(2024, 5, 23, 12, 0, 0, 0, time.UTC)

	terms := []string{"jawa", "jedi", "rey", "finn"}
	for i, term := range terms {
		seedEvent(t, repo, fmt.Sprintf("ev-%d", i), term, entities.SearchTypeHeader, base.Add(time.Duration(i)*time.Minute))
	}

	deleted, err := repo.DeleteOldest(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The most recent events survive.
	survivor, err := repo.GetByID(ctx, "ev-2")
	require.NoError(t, err)
	assert.Equal(t, "rey", survivor.Term)
	survivor, err = repo.GetByID(ctx, "ev-3")
	require.NoError(t, err)
	assert.Equal(t, "finn", survivor.Term)

	_, err = repo.GetByID(ctx, "ev-0")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryAdapter_TermBucketsByCalendarDate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySearchEventAdapter()
	noon := time.Date(2024, 5, 23, 12, 0, 0, 0, time.UTC)

	// Same UTC day, different hours: one bucket.
	seedEvent(t, repo, "ev-1", "ruby", entities.SearchTypeHeader, noon.Add(-time.Hour))
	seedEvent(t, repo, "ev-2", "ruby", entities.SearchTypeHeader, noon.Add(time.Hour))
	// Next day: its own bucket.
	seedEvent(t, repo, "ev-3", "ruby", entities.SearchTypeHeader, noon.Add(24*time.Hour))

	buckets, err := repo.TermBuckets(ctx, "ruby", nil, entities.TermFilter{})
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, time.Date(2024, 5, 23, 0, 0, 0, 0, time.UTC), buckets[0].X)
	assert.Equal(t, int64(2), buckets[0].Y)
	assert.Equal(t, time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC), buckets[1].X)
	assert.Equal(t, int64(1), buckets[1].Y)
}

func TestMemoryAdapter_TermBucketsCaseInsensitiveAndFiltered(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySearchEventAdapter()
	now := time.Date(2024, 5, 23, 12, 0, 0, 0, time.UTC)

	seedEvent(t, repo, "ev-1", "ruby", entities.SearchTypeHeader, now)
	seedEvent(t, repo, "ev-2", "ruBy", entities.SearchTypeHeader, now)
	seedEvent(t, repo, "ev-3", "ruby core", entities.SearchTypeHeader, now)
	seedEvent(t, repo, "ev-4", "ruBy", entities.SearchTypeFullPage, now)

	buckets, err := repo.TermBuckets(ctx, "ruby", nil, entities.TermFilter{})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(3), buckets[0].Y)

	header := entities.SearchTypeHeader
	buckets, err = repo.TermBuckets(ctx, "ruby", nil, entities.TermFilter{SearchType: &header})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(2), buckets[0].Y)

	require.NoError(t, repo.SetSearchResult(ctx, "ev-4", entities.SearchResultTypeTopic, "24"))
	buckets, err = repo.TermBuckets(ctx, "ruby", nil, entities.TermFilter{ClickThroughOnly: true})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(1), buckets[0].Y)
}

func TestMemoryAdapter_TrendingOrderAndWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySearchEventAdapter()
	now := time.Date(2024, 5, 23, 12, 0, 0, 0, time.UTC)

	for i, term := range []string{"ruby", "php", "java", "ruby", "swift", "ruBy"} {
		seedEvent(t, repo, fmt.Sprintf("ev-%d", i), term, entities.SearchTypeHeader, now)
	}

	trending, err := repo.Trending(ctx, nil, 100)
	require.NoError(t, err)
	require.Len(t, trending, 4)
	assert.Equal(t, "ruby", trending[0].Term)
	assert.Equal(t, int64(3), trending[0].Searches)
	assert.Equal(t, int64(0), trending[0].ClickThrough)
	// Deterministic tie-break: java, php, swift each have one search.
	assert.Equal(t, "java", trending[1].Term)
	assert.Equal(t, "php", trending[2].Term)
	assert.Equal(t, "swift", trending[3].Term)

	// Events before the window boundary drop out entirely.
	since := now.Add(-time.Minute)
	seedEvent(t, repo, "ev-old", "swift", entities.SearchTypeHeader, now.Add(-365*24*time.Hour))
	trending, err = repo.Trending(ctx, &since, 100)
	require.NoError(t, err)
	require.Len(t, trending, 4)
	for _, row := range trending {
		if row.Term == "swift" {
			assert.Equal(t, int64(1), row.Searches)
		}
	}

	require.NoError(t, repo.SetSearchResult(ctx, "ev-0", entities.SearchResultTypeTopic, "12"))
	require.NoError(t, repo.SetSearchResult(ctx, "ev-3", entities.SearchResultTypeTopic, "12"))
	require.NoError(t, repo.SetSearchResult(ctx, "ev-5", entities.SearchResultTypeTopic, "24"))
	trending, err = repo.Trending(ctx, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), trending[0].ClickThrough)
}

func TestMemoryAdapter_TrendingLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySearchEventAdapter()
	now := time.Date(2024, 5, 23, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		seedEvent(t, repo, fmt.Sprintf("ev-%d", i), fmt.Sprintf("term-%d", i), entities.SearchTypeHeader, now)
	}

	trending, err := repo.Trending(ctx, nil, 3)
	require.NoError(t, err)
	assert.Len(t, trending, 3)
}
