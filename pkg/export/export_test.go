package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"newsradar/internal/store"
	"newsradar/pkg/export"
)

func TestExportWritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "data", "news.json")

	items := []store.NewsItem{
		{
			ID:             2,
			Title:          "Newest",
			Body:           "body",
			Summary:        "summary",
			Source:         "TechNews",
			URL:            "https://example.com/b",
			PublishedAt:    time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC),
			CreatedAt:      time.Date(2025, 10, 18, 2, 0, 0, 0, time.UTC),
			Score:          lo.ToPtr(10),
			Priority:       lo.ToPtr(2),
			SearchPosition: lo.ToPtr(1),
			FromSerper:     lo.ToPtr(true),
		},
		{
			ID:          1,
			Title:       "Oldest",
			Body:        "body",
			Summary:     "summary",
			Source:      "TechNews",
			URL:         "https://example.com/a",
			PublishedAt: time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC),
			CreatedAt:   time.Date(2025, 10, 17, 2, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, export.New(path).Export(items))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed, 2)

	// Order preserved, newest first.
	require.Equal(t, "Newest", parsed[0]["title"])
	require.Equal(t, "Oldest", parsed[1]["title"])

	// Every key is present; timestamps are ISO-8601, absent optionals null.
	for _, key := range []string{
		"id", "title", "body", "summary", "source", "url",
		"published_at", "created_at", "hn_id", "score", "comments_count",
		"priority", "image_url", "search_position", "from_serper",
	} {
		require.Contains(t, parsed[0], key)
	}
	require.Equal(t, "2025-10-17T12:00:00Z", parsed[0]["published_at"])
	require.Equal(t, "2025-10-18T02:00:00Z", parsed[0]["created_at"])
	require.Equal(t, float64(10), parsed[0]["score"])
	require.Equal(t, true, parsed[0]["from_serper"])
	require.Nil(t, parsed[0]["hn_id"])
	require.Nil(t, parsed[1]["score"])
	require.Nil(t, parsed[1]["from_serper"])
}

func TestExportEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")

	require.NoError(t, export.New(path).Export(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed, 0)
}

func TestExportOverwritesWithoutLeavingTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.json")
	e := export.New(path)

	require.NoError(t, e.Export([]store.NewsItem{
		{ID: 1, URL: "https://example.com/a"},
		{ID: 2, URL: "https://example.com/b"},
	}))
	require.NoError(t, e.Export([]store.NewsItem{
		{ID: 3, URL: "https://example.com/c"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed, 1)
	require.Equal(t, "https://example.com/c", parsed[0]["url"])

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}
