package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Serper   SerperConfig   `yaml:"serper"`
	Export   ExportConfig   `yaml:"export"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Sources  SourcesConfig  `yaml:"sources"`
	Server   ServerConfig   `yaml:"server"`
	Filter   FilterConfig   `yaml:"filter"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SerperConfig configures the external search gateway.
type SerperConfig struct {
	APIKey      string   `yaml:"api_key"`
	Queries     []string `yaml:"queries"`
	MaxSearches int      `yaml:"max_searches"`
}

// Validate checks that the gateway credential is present. The API key is
// required and has no default.
func (s SerperConfig) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("serper api_key is required (set serper.api_key or SERPER_API_KEY)")
	}
	return nil
}

// ExportConfig configures the JSON snapshot output.
type ExportConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig configures the daily fetch time (24h, local clock).
type ScheduleConfig struct {
	Hour   int `yaml:"hour"`
	Minute int `yaml:"minute"`
}

// SourcesConfig holds configuration for the optional collectors.
type SourcesConfig struct {
	HackerNews HackerNewsConfig `yaml:"hackernews"`
	RSS        RSSConfig        `yaml:"rss"`
}

// HackerNewsConfig for the Hacker News collector.
type HackerNewsConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
}

// RSSConfig for the RSS feed collector.
type RSSConfig struct {
	Enabled bool       `yaml:"enabled"`
	Feeds   []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// FilterConfig configures keyword filtering for the HN/RSS collectors.
type FilterConfig struct {
	ExtraKeywords   []string `yaml:"extra_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./newsradar.db"},
		Serper: SerperConfig{
			MaxSearches: 5,
		},
		Export: ExportConfig{Path: "./public/data/news.json"},
		Schedule: ScheduleConfig{
			Hour:   2,
			Minute: 0,
		},
		Sources: SourcesConfig{
			HackerNews: HackerNewsConfig{Enabled: false, Limit: 100},
			RSS:        RSSConfig{Enabled: false},
		},
		Server:  ServerConfig{Port: 8080},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERPER_API_KEY"); v != "" {
		cfg.Serper.APIKey = v
	}
	if v := os.Getenv("NEWSRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("NEWSRADAR_EXPORT_PATH"); v != "" {
		cfg.Export.Path = v
	}
}
