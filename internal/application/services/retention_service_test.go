package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/searchpulse/internal/adapters/cache"
	"github.com/zatekoja/searchpulse/internal/adapters/clock"
	"github.com/zatekoja/searchpulse/internal/adapters/database"
	"github.com/zatekoja/searchpulse/internal/domain/entities"
	"github.com/zatekoja/searchpulse/pkg/config"
)

func TestCleanUp_RemovesOldestBeyondCap(t *testing.T) {
	ctx := context.Background()
	fixed := clock.NewFixedClock(time.Date(2024, 5, 23, 12, 0, 0, 0, time.UTC))
	repo := database.NewMemorySearchEventAdapter()
	memCache := cache.NewMemoryAdapter(fixed)
	logService := NewSearchLogService(repo, memCache, fixed, 5*time.Minute, nil)

	settings := NewSiteSettings(&config.SearchConfig{LogMaxSize: 100})
	retention := NewRetentionService(repo, settings, nil)

	// Distinct IPs so each search creates its own event; the clock moves
	// between them so age ordering is unambiguous.
	for i, term := range []string{"jawa", "jedi", "rey", "finn"} {
		fixed.Advance(time.Minute)
		action, _, err := logService.Log(ctx, LogRequest{
			Term:       term,
			SearchType: entities.SearchTypeHeader,
			IPAddress:  fmt.Sprintf("127.0.0.%d", i+1),
		})
		require.NoError(t, err)
		require.Equal(t, entities.ActionCreated, action)
	}

	// Under the cap: nothing to do.
	settings.SetSearchLogMaxSize(5)
	deleted, err := retention.CleanUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
	count, _ := repo.Count(ctx)
	assert.Equal(t, int64(4), count)

	// Over the cap: exactly the excess goes, oldest first.
	settings.SetSearchLogMaxSize(2)
	deleted, err = retention.CleanUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, _ = repo.Count(ctx)
	assert.Equal(t, int64(2), count)

	trending, err := repo.Trending(ctx, nil, 100)
	require.NoError(t, err)
	survivors := make([]string, 0, len(trending))
	for _, row := range trending {
		survivors = append(survivors, row.Term)
	}
	assert.ElementsMatch(t, []string{"rey", "finn"}, survivors)
}

func TestCleanUp_IdempotentAtCap(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemorySearchEventAdapter()
	settings := NewSiteSettings(&config.SearchConfig{LogMaxSize: 2})
	retention := NewRetentionService(repo, settings, nil)

	base := time.Date(2024, 5, 23, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"ev-1", "ev-2"} {
		require.NoError(t, repo.Create(ctx, &entities.SearchEvent{
			ID:         id,
			Term:       "hello",
			SearchType: entities.SearchTypeHeader,
			IPAddress:  "127.0.0.1",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	deleted, err := retention.CleanUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	deleted, err = retention.CleanUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	count, _ := repo.Count(ctx)
	assert.Equal(t, int64(2), count)
}
