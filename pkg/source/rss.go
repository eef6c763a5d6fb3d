package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// RSSFeed is a named RSS/Atom feed URL.
type RSSFeed struct {
	Name string
	URL  string
}

// RSS collects AI news candidates from RSS/Atom feeds.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []RSSFeed
	filter *Filter
	log    *slog.Logger
}

// NewRSS creates a new RSS collector.
func NewRSS(feeds []RSSFeed, filter *Filter, log *slog.Logger) *RSS {
	if log == nil {
		log = slog.Default()
	}
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
		filter: filter,
		log:    log,
	}
}

func (r *RSS) Name() SourceType { return SourceRSS }

func (r *RSS) Fetch(ctx context.Context) ([]Candidate, error) {
	var all []Candidate

	for _, feed := range r.feeds {
		items, err := r.fetchFeed(ctx, feed)
		if err != nil {
			r.log.Error("rss feed failed", "feed", feed.Name, "err", err)
			continue
		}
		all = append(all, items...)
	}

	return all, nil
}

func (r *RSS) fetchFeed(ctx context.Context, feed RSSFeed) ([]Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "newsradar/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	var items []Candidate
	cutoff := time.Now().Add(-24 * time.Hour) // only last 24h

	for _, entry := range parsed.Items {
		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}
		if link == "" {
			continue
		}

		published := time.Now().UTC()
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}
		if published.Before(cutoff) {
			continue
		}

		// Some feeds are AI-specific, others need filtering.
		if r.filter != nil && !r.filter.Matches(entry.Title+" "+entry.Description) {
			continue
		}

		body := entry.Content
		if body == "" {
			body = entry.Description
		}
		if body == "" {
			body = entry.Title
		}

		items = append(items, Candidate{
			Title:       entry.Title,
			Body:        body,
			Summary:     truncate(body, SummaryMaxLen),
			Source:      feed.Name,
			URL:         link,
			PublishedAt: published,
			Priority:    lo.ToPtr(PriorityRSS),
			FromSerper:  lo.ToPtr(false),
		})
	}

	return items, nil
}
