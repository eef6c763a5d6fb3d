package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"newsradar/internal/store"
	"newsradar/pkg/source"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func candidate(url string) source.Candidate {
	return source.Candidate{
		Title:       "Some headline",
		Body:        "Some body text",
		Summary:     "Some body text",
		Source:      "TechNews",
		URL:         url,
		PublishedAt: time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC),
	}
}

func TestInsertNewPersistsNovelURLs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, duplicates, err := s.InsertNew(ctx, []source.Candidate{
		candidate("https://example.com/a"),
		candidate("https://example.com/b"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, saved)
	require.Equal(t, 0, duplicates)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestInsertNewSkipsExistingURLs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.InsertNew(ctx, []source.Candidate{candidate("https://example.com/a")})
	require.NoError(t, err)

	// Same URL with different fields must neither create a row nor mutate
	// the stored one.
	changed := candidate("https://example.com/a")
	changed.Title = "A different headline"

	saved, duplicates, err := s.InsertNew(ctx, []source.Candidate{
		changed,
		candidate("https://example.com/b"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, saved)
	require.Equal(t, 1, duplicates)

	items, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		if item.URL == "https://example.com/a" {
			require.Equal(t, "Some headline", item.Title)
		}
	}
}

func TestInsertNewIntraBatchDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, duplicates, err := s.InsertNew(ctx, []source.Candidate{
		candidate("https://example.com/a"),
		candidate("https://example.com/a"),
		candidate("https://example.com/a"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, saved)
	require.Equal(t, 2, duplicates)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestInsertNewEmptyBatch(t *testing.T) {
	s := newTestStore(t)

	saved, duplicates, err := s.InsertNew(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, saved)
	require.Equal(t, 0, duplicates)
}

func TestGetReturnsEnrichmentFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := candidate("https://example.com/ai-news")
	c.Score = lo.ToPtr(42)
	c.CommentsCount = lo.ToPtr(7)
	c.Priority = lo.ToPtr(2)
	c.ImageURL = lo.ToPtr("https://example.com/img.png")
	c.SearchPosition = lo.ToPtr(1)
	c.FromSerper = lo.ToPtr(true)

	_, _, err := s.InsertNew(ctx, []source.Candidate{c})
	require.NoError(t, err)

	items, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item, err := s.Get(ctx, items[0].ID)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/ai-news", item.URL)
	require.Equal(t, 42, *item.Score)
	require.Equal(t, 7, *item.CommentsCount)
	require.Equal(t, 2, *item.Priority)
	require.Equal(t, "https://example.com/img.png", *item.ImageURL)
	require.Equal(t, 1, *item.SearchPosition)
	require.True(t, *item.FromSerper)
	require.Nil(t, item.HNID)
	require.False(t, item.CreatedAt.IsZero())
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), 12345)
	require.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListPaginationPartition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var batch []source.Candidate
	for i := 0; i < 10; i++ {
		batch = append(batch, candidate("https://example.com/"+string(rune('a'+i))))
	}
	_, _, err := s.InsertNew(ctx, batch)
	require.NoError(t, err)

	first, err := s.List(ctx, store.ListOpts{Skip: 0, Limit: 5})
	require.NoError(t, err)
	second, err := s.List(ctx, store.ListOpts{Skip: 5, Limit: 5})
	require.NoError(t, err)

	require.Len(t, first, 5)
	require.Len(t, second, 5)

	// No overlap, no gaps, newest first.
	seen := make(map[int64]bool)
	var prev int64 = 1 << 62
	for _, item := range append(first, second...) {
		require.False(t, seen[item.ID])
		seen[item.ID] = true
		require.Less(t, item.ID, prev)
		prev = item.ID
	}
	require.Len(t, seen, 10)
}

func TestListSourceFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := candidate("https://example.com/a")
	b := candidate("https://example.com/b")
	b.Source = "Hacker News"

	_, _, err := s.InsertNew(ctx, []source.Candidate{a, b})
	require.NoError(t, err)

	items, err := s.List(ctx, store.ListOpts{Source: "Hacker News"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "https://example.com/b", items[0].URL)
}

func TestAllOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.InsertNew(ctx, []source.Candidate{candidate("https://example.com/old")})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, _, err = s.InsertNew(ctx, []source.Candidate{candidate("https://example.com/new")})
	require.NoError(t, err)

	items, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "https://example.com/new", items[0].URL)
	require.False(t, items[0].CreatedAt.Before(items[1].CreatedAt))
}
