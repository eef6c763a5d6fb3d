package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/samber/lo"
)

const defaultSerperURL = "https://google.serper.dev/search"

// DefaultQueries are the topic searches issued each fetch cycle when none are
// configured.
var DefaultQueries = []string{
	"AI artificial intelligence",
	"machine learning",
	"LLM large language model",
	"deep learning",
	"neural networks",
}

// Serper collects news candidates from the Serper search API. Each configured
// query produces one request; per-query failures are isolated and contribute
// zero candidates.
type Serper struct {
	// BaseURL is the search endpoint. Overridable for tests.
	BaseURL string

	client  *http.Client
	apiKey  string
	queries []string
	log     *slog.Logger
}

// NewSerper creates a Serper gateway bounded to maxSearches queries.
func NewSerper(apiKey string, queries []string, maxSearches int, log *slog.Logger) *Serper {
	if len(queries) == 0 {
		queries = DefaultQueries
	}
	if maxSearches <= 0 {
		maxSearches = 5
	}
	if len(queries) > maxSearches {
		queries = queries[:maxSearches]
	}
	if log == nil {
		log = slog.Default()
	}
	return &Serper{
		BaseURL: defaultSerperURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		apiKey:  apiKey,
		queries: queries,
		log:     log,
	}
}

func (s *Serper) Name() SourceType { return SourceSerper }

// Fetch issues all queries and flattens their candidates in query order.
// Queries run concurrently; a failed query logs and yields nothing without
// aborting the rest.
func (s *Serper) Fetch(ctx context.Context) ([]Candidate, error) {
	results := make([][]Candidate, len(s.queries))

	var wg sync.WaitGroup
	sem := make(chan struct{}, 5) // concurrency limit

	for i, query := range s.queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := s.search(ctx, query, i+1)
			if err != nil {
				s.log.Error("serper query failed", "query", query, "err", err)
				return
			}
			results[i] = items
		}(i, query)
	}
	wg.Wait()

	var all []Candidate
	for _, items := range results {
		all = append(all, items...)
	}
	return all, nil
}

type serperResult struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Source   string `json:"source"`
	Link     string `json:"link"`
	Date     string `json:"date"`
	ImageURL string `json:"imageUrl"`
}

type serperResponse struct {
	Organic []serperResult `json:"organic"`
}

func (s *Serper) search(ctx context.Context, query string, position int) ([]Candidate, error) {
	payload, err := json.Marshal(map[string]any{"q": query, "num": 10})
	if err != nil {
		return nil, fmt.Errorf("encode serper payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch serper %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper %q status %d", query, resp.StatusCode)
	}

	var decoded serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode serper %q: %w", query, err)
	}

	return s.parseResults(decoded.Organic, position), nil
}

// parseResults maps organic results to candidates. position is the 1-based
// ordinal of the issuing query, not the in-result rank.
func (s *Serper) parseResults(results []serperResult, position int) []Candidate {
	var out []Candidate
	for _, r := range results {
		if r.Link == "" {
			// The URL is the identity key; nothing to store without it.
			s.log.Warn("serper result missing link, skipping", "title", r.Title)
			continue
		}

		title := r.Title
		if title == "" {
			title = "No title"
		}
		body := r.Snippet
		if body == "" {
			body = "No content"
		}
		src := r.Source
		if src == "" {
			src = "Unknown"
		}

		c := Candidate{
			Title:          title,
			Body:           body,
			Summary:        truncate(body, SummaryMaxLen),
			Source:         src,
			URL:            r.Link,
			PublishedAt:    parseDate(r.Date),
			Priority:       lo.ToPtr(PrioritySerper),
			SearchPosition: lo.ToPtr(position),
			FromSerper:     lo.ToPtr(true),
		}
		if r.ImageURL != "" {
			c.ImageURL = lo.ToPtr(r.ImageURL)
		}
		out = append(out, c)
	}
	return out
}

// parseDate accepts an ISO-8601 timestamp, with or without a zone offset
// (trailing Z tolerated; offset-less values are taken as UTC). A missing or
// unparseable date falls back to the current time; that is policy, not an
// error.
func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
