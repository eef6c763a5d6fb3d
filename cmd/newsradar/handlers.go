package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"newsradar/internal/config"
	"newsradar/internal/logging"
	"newsradar/internal/scheduler"
	"newsradar/internal/store"
	"newsradar/pkg/export"
	"newsradar/pkg/fetch"
	"newsradar/pkg/server"
	"newsradar/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildSources(cfg *config.Config, log *slog.Logger) ([]source.Source, error) {
	if err := cfg.Serper.Validate(); err != nil {
		return nil, err
	}

	sources := []source.Source{
		source.NewSerper(
			cfg.Serper.APIKey,
			cfg.Serper.Queries,
			cfg.Serper.MaxSearches,
			log.With("component", "source.serper"),
		),
	}

	filter := source.NewFilter(cfg.Filter.ExtraKeywords, cfg.Filter.ExcludeKeywords)
	if cfg.Sources.HackerNews.Enabled {
		sources = append(sources, source.NewHackerNews(
			cfg.Sources.HackerNews.Limit,
			filter,
			log.With("component", "source.hackernews"),
		))
	}
	if cfg.Sources.RSS.Enabled {
		feeds := make([]source.RSSFeed, len(cfg.Sources.RSS.Feeds))
		for i, f := range cfg.Sources.RSS.Feeds {
			feeds[i] = source.RSSFeed{Name: f.Name, URL: f.URL}
		}
		sources = append(sources, source.NewRSS(feeds, filter, log.With("component", "source.rss")))
	}

	return sources, nil
}

func buildPipeline(cfg *config.Config, db store.Store, log *slog.Logger) (*fetch.Pipeline, error) {
	sources, err := buildSources(cfg, log)
	if err != nil {
		return nil, err
	}
	exporter := export.New(cfg.Export.Path)
	return fetch.New(db, sources, exporter, log.With("component", "pipeline")), nil
}

func runFetch() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Logging.Level)

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	pipeline, err := buildPipeline(cfg, db, log)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("saved %d new items, skipped %d duplicates\n", res.Saved, res.Duplicates)
	return nil
}

func runExport() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	items, err := db.All(context.Background())
	if err != nil {
		return err
	}
	if err := export.New(cfg.Export.Path).Export(items); err != nil {
		return err
	}

	fmt.Printf("exported %d items to %s\n", len(items), cfg.Export.Path)
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Logging.Level)

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	pipeline, err := buildPipeline(cfg, db, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(db, pipeline, port, log.With("component", "server"))
	return srv.ListenAndServe(ctx)
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.Logging.Level)

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	pipeline, err := buildPipeline(cfg, db, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(pipeline, cfg.Schedule.Hour, cfg.Schedule.Minute,
		log.With("component", "scheduler"))
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("scheduler stopped", "err", err)
		}
	}()

	srv := server.New(db, pipeline, port, log.With("component", "server"))
	return srv.ListenAndServe(ctx)
}
