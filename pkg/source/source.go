package source

import (
	"context"
	"time"
)

// SourceType identifies which ingestion path a candidate came from.
type SourceType string

const (
	SourceSerper     SourceType = "serper"
	SourceHackerNews SourceType = "hackernews"
	SourceRSS        SourceType = "rss"
)

// Priority ranks assigned per ingestion path.
const (
	PriorityHackerNews = 1
	PrioritySerper     = 2
	PriorityRSS        = 2
)

// SummaryMaxLen caps the derived summary length in characters.
const SummaryMaxLen = 200

// Candidate is a parsed, not-yet-persisted news record. Identity is the URL;
// the store assigns id and created_at when a candidate turns out to be novel.
type Candidate struct {
	Title          string
	Body           string
	Summary        string
	Source         string
	URL            string
	PublishedAt    time.Time
	HNID           *int64
	Score          *int
	CommentsCount  *int
	Priority       *int
	ImageURL       *string
	SearchPosition *int
	FromSerper     *bool
}

// Source is the interface every collector must implement.
type Source interface {
	Name() SourceType
	Fetch(ctx context.Context) ([]Candidate, error)
}

// truncate cuts s to at most max characters. Summaries are derived from the
// body, never generated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
