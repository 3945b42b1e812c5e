package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scrape.SaveEvery != 50 {
		t.Errorf("expected timeline save interval 50, got %d", cfg.Scrape.SaveEvery)
	}
	if cfg.Scrape.LinkSaveEvery != 20 {
		t.Errorf("expected link save interval 20, got %d", cfg.Scrape.LinkSaveEvery)
	}
	if cfg.Scrape.EmptyPagesNoResults != 3 || cfg.Scrape.EmptyPagesPrompt != 5 || cfg.Scrape.EmptyPagesCeiling != 10 {
		t.Errorf("unexpected empty-page thresholds: %d/%d/%d",
			cfg.Scrape.EmptyPagesNoResults, cfg.Scrape.EmptyPagesPrompt, cfg.Scrape.EmptyPagesCeiling)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("expected default format csv, got %s", cfg.Output.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty cookies file", func(c *Config) { c.Auth.CookiesFile = "" }},
		{"zero save interval", func(c *Config) { c.Scrape.SaveEvery = 0 }},
		{"negative fetch delay", func(c *Config) { c.Scrape.FetchDelay = -time.Second }},
		{"bad format", func(c *Config) { c.Output.Format = "parquet" }},
		{"prompt below no-results", func(c *Config) { c.Scrape.EmptyPagesPrompt = 2 }},
		{"ceiling below prompt", func(c *Config) { c.Scrape.EmptyPagesCeiling = 4 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }},
		{"inverted break range", func(c *Config) {
			c.Breaks.Enabled = true
			c.Breaks.MinMinutes = 10
			c.Breaks.MaxMinutes = 5
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
scrape:
  save_every: 25
  max_tweets: 500
output:
  directory: /tmp/out
  format: excel
breaks:
  enabled: true
  tweet_interval: 200
  min_minutes: 3
  max_minutes: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Scrape.SaveEvery != 25 {
		t.Errorf("expected save_every 25, got %d", cfg.Scrape.SaveEvery)
	}
	if cfg.Scrape.MaxTweets != 500 {
		t.Errorf("expected max_tweets 500, got %d", cfg.Scrape.MaxTweets)
	}
	if cfg.Output.Format != "excel" {
		t.Errorf("expected format excel, got %s", cfg.Output.Format)
	}
	if !cfg.Breaks.Enabled || cfg.Breaks.TweetInterval != 200 {
		t.Error("break settings not loaded")
	}
	// Untouched sections keep defaults.
	if cfg.Scrape.LinkSaveEvery != 20 {
		t.Errorf("expected link_save_every default 20, got %d", cfg.Scrape.LinkSaveEvery)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("XSCRAPER_OUTPUT_DIR", "/data/tweets")
	t.Setenv("XSCRAPER_FORMAT", "excel")
	t.Setenv("XSCRAPER_MAX_TWEETS", "150")
	t.Setenv("XSCRAPER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("failed to load env: %v", err)
	}

	if cfg.Output.Directory != "/data/tweets" {
		t.Errorf("expected output dir override, got %s", cfg.Output.Directory)
	}
	if cfg.Output.Format != "excel" {
		t.Errorf("expected format excel, got %s", cfg.Output.Format)
	}
	if cfg.Scrape.MaxTweets != 150 {
		t.Errorf("expected max tweets 150, got %d", cfg.Scrape.MaxTweets)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":     "/flag/out",
		"max-tweets": 99,
		"format":     "excel",
	})

	if cfg.Output.Directory != "/flag/out" {
		t.Errorf("flag output not applied: %s", cfg.Output.Directory)
	}
	if cfg.Scrape.MaxTweets != 99 {
		t.Errorf("flag max-tweets not applied: %d", cfg.Scrape.MaxTweets)
	}
	if cfg.Output.Format != "excel" {
		t.Errorf("flag format not applied: %s", cfg.Output.Format)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	cfg := DefaultConfig()
	cfg.Scrape.MaxTweets = 42
	if err := cfg.Save(path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if loaded.Scrape.MaxTweets != 42 {
		t.Errorf("round trip lost max_tweets: %d", loaded.Scrape.MaxTweets)
	}
}
