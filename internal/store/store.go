package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"newsradar/pkg/source"
)

// ErrNotFound is returned by Get for an unknown item id. A miss on a point
// query is an expected outcome, not a system error.
var ErrNotFound = errors.New("news item not found")

// NewsItem is a persisted news record. Identity is the URL; rows are created
// once and never updated by the fetch pipeline.
type NewsItem struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Summary        string    `json:"summary"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"published_at"`
	CreatedAt      time.Time `json:"created_at"`
	HNID           *int64    `json:"hn_id"`
	Score          *int      `json:"score"`
	CommentsCount  *int      `json:"comments_count"`
	Priority       *int      `json:"priority"`
	ImageURL       *string   `json:"image_url"`
	SearchPosition *int      `json:"search_position"`
	FromSerper     *bool     `json:"from_serper"`
}

// ListOpts controls item listing. Limit is clamped to [1, 1000].
type ListOpts struct {
	Skip   int
	Limit  int
	Source string
}

// Store is the persistence interface.
type Store interface {
	InsertNew(ctx context.Context, candidates []source.Candidate) (saved, duplicates int, err error)
	List(ctx context.Context, opts ListOpts) ([]NewsItem, error)
	Get(ctx context.Context, id int64) (*NewsItem, error)
	All(ctx context.Context) ([]NewsItem, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// dbNews is the row shape; nullable columns scan into sql.Null types.
type dbNews struct {
	ID             int64          `db:"id"`
	Title          string         `db:"title"`
	Body           string         `db:"body"`
	Summary        string         `db:"summary"`
	Source         string         `db:"source"`
	URL            string         `db:"url"`
	PublishedAt    time.Time      `db:"published_at"`
	CreatedAt      time.Time      `db:"created_at"`
	HNID           sql.NullInt64  `db:"hn_id"`
	Score          sql.NullInt64  `db:"score"`
	CommentsCount  sql.NullInt64  `db:"comments_count"`
	Priority       sql.NullInt64  `db:"priority"`
	ImageURL       sql.NullString `db:"image_url"`
	SearchPosition sql.NullInt64  `db:"search_position"`
	FromSerper     sql.NullBool   `db:"from_serper"`
}

func toNewsItem(row dbNews, _ int) NewsItem {
	item := NewsItem{
		ID:          row.ID,
		Title:       row.Title,
		Body:        row.Body,
		Summary:     row.Summary,
		Source:      row.Source,
		URL:         row.URL,
		PublishedAt: row.PublishedAt,
		CreatedAt:   row.CreatedAt,
	}
	if row.HNID.Valid {
		item.HNID = lo.ToPtr(row.HNID.Int64)
	}
	if row.Score.Valid {
		item.Score = lo.ToPtr(int(row.Score.Int64))
	}
	if row.CommentsCount.Valid {
		item.CommentsCount = lo.ToPtr(int(row.CommentsCount.Int64))
	}
	if row.Priority.Valid {
		item.Priority = lo.ToPtr(int(row.Priority.Int64))
	}
	if row.ImageURL.Valid {
		item.ImageURL = lo.ToPtr(row.ImageURL.String)
	}
	if row.SearchPosition.Valid {
		item.SearchPosition = lo.ToPtr(int(row.SearchPosition.Int64))
	}
	if row.FromSerper.Valid {
		item.FromSerper = lo.ToPtr(row.FromSerper.Bool)
	}
	return item
}

// InsertNew stages every candidate whose URL is novel and commits them as one
// unit of work. Duplicates (against stored rows or earlier candidates in the
// same batch) are counted and discarded, never merged.
func (s *SQLiteStore) InsertNew(ctx context.Context, candidates []source.Candidate) (int, int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	var saved, duplicates int
	seen := make(map[string]struct{}, len(candidates))
	now := time.Now().UTC()

	for _, c := range candidates {
		if _, ok := seen[c.URL]; ok {
			duplicates++
			continue
		}
		seen[c.URL] = struct{}{}

		var exists bool
		if err := tx.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM news WHERE url = ?)", c.URL); err != nil {
			return 0, 0, fmt.Errorf("check url %s: %w", c.URL, err)
		}
		if exists {
			duplicates++
			continue
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO news (title, body, summary, source, url, published_at, created_at,
			                  hn_id, score, comments_count, priority, image_url, search_position, from_serper)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.Title, c.Body, c.Summary, c.Source, c.URL, c.PublishedAt.UTC(), now,
			c.HNID, c.Score, c.CommentsCount, c.Priority, c.ImageURL, c.SearchPosition, c.FromSerper); err != nil {
			return 0, 0, fmt.Errorf("insert %s: %w", c.URL, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit insert batch: %w", err)
	}
	return saved, duplicates, nil
}

// List returns items newest first (insertion order, id as tiebreak).
func (s *SQLiteStore) List(ctx context.Context, opts ListOpts) ([]NewsItem, error) {
	query := "SELECT * FROM news"
	var args []any

	if opts.Source != "" {
		query += " WHERE source = ?"
		args = append(args, opts.Source)
	}

	query += " ORDER BY created_at DESC, id DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	var rows []dbNews
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return lo.Map(rows, toNewsItem), nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*NewsItem, error) {
	var row dbNews
	err := s.db.GetContext(ctx, &row, "SELECT * FROM news WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get news %d: %w", id, err)
	}
	item := toNewsItem(row, 0)
	return &item, nil
}

// All returns the entire collection newest first, for snapshot export.
func (s *SQLiteStore) All(ctx context.Context) ([]NewsItem, error) {
	var rows []dbNews
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM news ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("load all news: %w", err)
	}
	return lo.Map(rows, toNewsItem), nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM news"); err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return n, nil
}
