package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/samber/lo"
)

const defaultHNBaseURL = "https://hacker-news.firebaseio.com/v0"

// HackerNews collects AI-related stories from Hacker News. Unlike the search
// gateway it fills the hn_id/score/comments enrichment fields and leaves the
// search fields absent.
type HackerNews struct {
	// BaseURL is the Firebase API root. Overridable for tests.
	BaseURL string

	client *http.Client
	limit  int
	filter *Filter
	log    *slog.Logger
}

// NewHackerNews creates a new HN collector.
func NewHackerNews(limit int, filter *Filter, log *slog.Logger) *HackerNews {
	if limit <= 0 {
		limit = 100
	}
	if log == nil {
		log = slog.Default()
	}
	return &HackerNews{
		BaseURL: defaultHNBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limit:   limit,
		filter:  filter,
		log:     log,
	}
}

func (h *HackerNews) Name() SourceType { return SourceHackerNews }

func (h *HackerNews) Fetch(ctx context.Context) ([]Candidate, error) {
	ids, err := h.fetchTopStories(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) > h.limit {
		ids = ids[:h.limit]
	}

	var (
		mu    sync.Mutex
		items []Candidate
		wg    sync.WaitGroup
		sem   = make(chan struct{}, 10) // concurrency limit
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			story, err := h.fetchItem(ctx, id)
			if err != nil {
				h.log.Warn("hn item fetch failed", "id", id, "err", err)
				return
			}
			if story == nil {
				return
			}

			// Only AI-related stories.
			if h.filter != nil && !h.filter.Matches(story.Title+" "+story.URL) {
				return
			}

			url := story.URL
			if url == "" {
				url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
			}
			body := story.Text
			if body == "" {
				body = story.Title
			}

			c := Candidate{
				Title:         story.Title,
				Body:          body,
				Summary:       truncate(body, SummaryMaxLen),
				Source:        "Hacker News",
				URL:           url,
				PublishedAt:   time.Unix(story.Time, 0).UTC(),
				HNID:          lo.ToPtr(int64(story.ID)),
				Score:         lo.ToPtr(story.Score),
				CommentsCount: lo.ToPtr(story.Descendants),
				Priority:      lo.ToPtr(PriorityHackerNews),
				FromSerper:    lo.ToPtr(false),
			}

			mu.Lock()
			items = append(items, c)
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	return items, nil
}

type hnStory struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
	Type        string `json:"type"`
}

func (h *HackerNews) fetchTopStories(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("create hn request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hn top stories: %w", err)
	}
	defer resp.Body.Close()

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode hn top stories: %w", err)
	}
	return ids, nil
}

func (h *HackerNews) fetchItem(ctx context.Context, id int) (*hnStory, error) {
	url := fmt.Sprintf("%s/item/%d.json", h.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create hn item request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hn item %d: %w", id, err)
	}
	defer resp.Body.Close()

	var story hnStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return nil, fmt.Errorf("decode hn item %d: %w", id, err)
	}

	if story.Type != "story" {
		return nil, nil
	}
	return &story, nil
}
