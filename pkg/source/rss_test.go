package source_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsradar/pkg/source"
)

func rssFeedXML(pubDate string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>New LLM released</title>
      <link>https://example.com/llm</link>
      <description>A large language model announcement</description>
      <pubDate>%s</pubDate>
    </item>
    <item>
      <title>Weekend cooking tips</title>
      <link>https://example.com/cooking</link>
      <description>Nothing technical here</description>
      <pubDate>%s</pubDate>
    </item>
  </channel>
</rss>`, pubDate, pubDate)
}

func TestRSSFetch(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Hour).Format(time.RFC1123Z)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFeedXML(recent))
	}))
	defer srv.Close()

	feeds := []source.RSSFeed{{Name: "Test Feed", URL: srv.URL}}
	rss := source.NewRSS(feeds, source.NewFilter(nil, nil), discardLogger())

	candidates, err := rss.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	require.Equal(t, "New LLM released", c.Title)
	require.Equal(t, "https://example.com/llm", c.URL)
	require.Equal(t, "Test Feed", c.Source)
	require.Equal(t, source.PriorityRSS, *c.Priority)
	require.False(t, *c.FromSerper)
	require.Nil(t, c.SearchPosition)
	require.Nil(t, c.HNID)
}

func TestRSSSkipsOldEntries(t *testing.T) {
	stale := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC1123Z)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeedXML(stale))
	}))
	defer srv.Close()

	feeds := []source.RSSFeed{{Name: "Test Feed", URL: srv.URL}}
	rss := source.NewRSS(feeds, source.NewFilter(nil, nil), discardLogger())

	candidates, err := rss.Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestRSSFeedFailureIsolated(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Hour).Format(time.RFC1123Z)

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeedXML(recent))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	feeds := []source.RSSFeed{
		{Name: "Broken", URL: bad.URL},
		{Name: "Test Feed", URL: good.URL},
	}
	rss := source.NewRSS(feeds, source.NewFilter(nil, nil), discardLogger())

	candidates, err := rss.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "Test Feed", candidates[0].Source)
}
