package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"newsradar/internal/store"
	"newsradar/pkg/source"
)

// Result reports what a fetch cycle did.
type Result struct {
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
}

// Exporter publishes the current collection as a snapshot file.
type Exporter interface {
	Export(items []store.NewsItem) error
}

// Pipeline runs one fetch cycle: collect candidates from every source, persist
// the novel ones, republish the snapshot. Cycles are serialized: the
// duplicate check reads then writes, so two interleaved cycles could both
// insert the same URL.
type Pipeline struct {
	mu       sync.Mutex
	store    store.Store
	sources  []source.Source
	exporter Exporter
	log      *slog.Logger
}

// New creates a pipeline.
func New(st store.Store, sources []source.Source, exporter Exporter, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		store:    st,
		sources:  sources,
		exporter: exporter,
		log:      log,
	}
}

// Run executes a fetch cycle and returns the persisted/duplicate counts.
// A source failure contributes zero candidates and does not abort the cycle;
// a persistence failure aborts before export; an export failure is surfaced
// but the persisted rows stay committed.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var candidates []source.Candidate
	for _, src := range p.sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			p.log.Error("source fetch failed", "source", src.Name(), "err", err)
			continue
		}
		p.log.Info("source fetched", "source", src.Name(), "candidates", len(items))
		candidates = append(candidates, items...)
	}

	saved, duplicates, err := p.store.InsertNew(ctx, candidates)
	if err != nil {
		return Result{}, fmt.Errorf("persist candidates: %w", err)
	}
	res := Result{Saved: saved, Duplicates: duplicates}

	items, err := p.store.All(ctx)
	if err != nil {
		return res, fmt.Errorf("load collection for export: %w", err)
	}
	if err := p.exporter.Export(items); err != nil {
		return res, fmt.Errorf("export snapshot: %w", err)
	}

	p.log.Info("fetch cycle complete",
		"saved", saved, "duplicates", duplicates, "exported", len(items))
	return res, nil
}
