package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newsradar/internal/store"
)

// Exporter writes the full news collection as a flat JSON array for static
// consumption by the front end.
type Exporter struct {
	path string
}

// New creates an exporter targeting the given file path.
func New(path string) *Exporter {
	return &Exporter{path: path}
}

// record is the snapshot element shape. Timestamps render as ISO-8601 strings,
// absent optionals as null.
type record struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	Summary        string  `json:"summary"`
	Source         string  `json:"source"`
	URL            string  `json:"url"`
	PublishedAt    *string `json:"published_at"`
	CreatedAt      *string `json:"created_at"`
	HNID           *int64  `json:"hn_id"`
	Score          *int    `json:"score"`
	CommentsCount  *int    `json:"comments_count"`
	Priority       *int    `json:"priority"`
	ImageURL       *string `json:"image_url"`
	SearchPosition *int    `json:"search_position"`
	FromSerper     *bool   `json:"from_serper"`
}

// Export writes items, in the order given, to the configured path. Parent
// directories are created as needed; the file is written to a temp sibling
// and renamed so a concurrent reader never sees a partial snapshot.
func (e *Exporter) Export(items []store.NewsItem) error {
	records := make([]record, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir %s: %w", dir, err)
		}
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish snapshot %s: %w", e.path, err)
	}
	return nil
}

func toRecord(item store.NewsItem) record {
	return record{
		ID:             item.ID,
		Title:          item.Title,
		Body:           item.Body,
		Summary:        item.Summary,
		Source:         item.Source,
		URL:            item.URL,
		PublishedAt:    isoTime(item.PublishedAt),
		CreatedAt:      isoTime(item.CreatedAt),
		HNID:           item.HNID,
		Score:          item.Score,
		CommentsCount:  item.CommentsCount,
		Priority:       item.Priority,
		ImageURL:       item.ImageURL,
		SearchPosition: item.SearchPosition,
		FromSerper:     item.FromSerper,
	}
}

func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
