package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the tweet scraper
type Config struct {
	// Cookie-based authentication
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// Scrape loop settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Preventive cooldown breaks
	Breaks BreakConfig `yaml:"breaks" json:"breaks"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AuthConfig names the cookie file consumed by the upstream client.
// Producing and refreshing the file is the front-end's job; the engine
// only needs to know where it lives.
type AuthConfig struct {
	CookiesFile string `yaml:"cookies_file" json:"cookies_file"`
}

// ScrapeConfig holds pagination-loop tuning
type ScrapeConfig struct {
	// SaveEvery is the accepted-record interval between checkpoint
	// saves and sink flushes in timeline mode
	SaveEvery int `yaml:"save_every" json:"save_every"`

	// LinkSaveEvery is the same interval for link mode
	LinkSaveEvery int `yaml:"link_save_every" json:"link_save_every"`

	// FetchDelay is the fixed pause between individual link fetches
	FetchDelay time.Duration `yaml:"fetch_delay" json:"fetch_delay"`

	// Consecutive-empty-page thresholds
	EmptyPagesNoResults int `yaml:"empty_pages_no_results" json:"empty_pages_no_results"`
	EmptyPagesPrompt    int `yaml:"empty_pages_prompt" json:"empty_pages_prompt"`
	EmptyPagesCeiling   int `yaml:"empty_pages_ceiling" json:"empty_pages_ceiling"`

	// MaxTweets caps accepted records per run (0 means unlimited)
	MaxTweets int `yaml:"max_tweets" json:"max_tweets"`
}

// BreakConfig configures the preventive cooldown pause
type BreakConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	TweetInterval int  `yaml:"tweet_interval" json:"tweet_interval"`
	MinMinutes    int  `yaml:"min_minutes" json:"min_minutes"`
	MaxMinutes    int  `yaml:"max_minutes" json:"max_minutes"`
}

// OutputConfig holds export destination configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Format    string `yaml:"format" json:"format"` // "csv" or "excel"
	StateFile string `yaml:"state_file" json:"state_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			CookiesFile: "cookies.json",
		},
		Scrape: ScrapeConfig{
			SaveEvery:           50,
			LinkSaveEvery:       20,
			FetchDelay:          3 * time.Second,
			EmptyPagesNoResults: 3,
			EmptyPagesPrompt:    5,
			EmptyPagesCeiling:   10,
			MaxTweets:           0,
		},
		Breaks: BreakConfig{
			Enabled:       false,
			TweetInterval: 100,
			MinMinutes:    5,
			MaxMinutes:    10,
		},
		Output: OutputConfig{
			Directory: "./exports",
			Format:    "csv",
			StateFile: "scraper_state.json",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if cookies := os.Getenv("XSCRAPER_COOKIES_FILE"); cookies != "" {
		c.Auth.CookiesFile = cookies
	}
	if dir := os.Getenv("XSCRAPER_OUTPUT_DIR"); dir != "" {
		c.Output.Directory = dir
	}
	if format := os.Getenv("XSCRAPER_FORMAT"); format != "" {
		c.Output.Format = format
	}
	if state := os.Getenv("XSCRAPER_STATE_FILE"); state != "" {
		c.Output.StateFile = state
	}
	if saveEvery := os.Getenv("XSCRAPER_SAVE_EVERY"); saveEvery != "" {
		if val, err := strconv.Atoi(saveEvery); err == nil && val > 0 {
			c.Scrape.SaveEvery = val
		}
	}
	if maxTweets := os.Getenv("XSCRAPER_MAX_TWEETS"); maxTweets != "" {
		if val, err := strconv.Atoi(maxTweets); err == nil && val >= 0 {
			c.Scrape.MaxTweets = val
		}
	}
	if breaks := os.Getenv("XSCRAPER_BREAKS_ENABLED"); breaks != "" {
		c.Breaks.Enabled = strings.EqualFold(breaks, "true")
	}
	if logLevel := os.Getenv("XSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".xscraper.yaml",
		".xscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.CookiesFile == "" {
		errs = append(errs, errors.New("cookies file path is required"))
	}

	if c.Scrape.SaveEvery <= 0 {
		errs = append(errs, errors.New("save interval must be positive"))
	}
	if c.Scrape.LinkSaveEvery <= 0 {
		errs = append(errs, errors.New("link save interval must be positive"))
	}
	if c.Scrape.FetchDelay < 0 {
		errs = append(errs, errors.New("fetch delay cannot be negative"))
	}
	if c.Scrape.MaxTweets < 0 {
		errs = append(errs, errors.New("max tweets cannot be negative"))
	}
	if c.Scrape.EmptyPagesNoResults <= 0 {
		errs = append(errs, errors.New("empty-page no-results threshold must be positive"))
	}
	if c.Scrape.EmptyPagesPrompt <= c.Scrape.EmptyPagesNoResults {
		errs = append(errs, errors.New("empty-page prompt threshold must exceed the no-results threshold"))
	}
	if c.Scrape.EmptyPagesCeiling <= c.Scrape.EmptyPagesPrompt {
		errs = append(errs, errors.New("empty-page ceiling must exceed the prompt threshold"))
	}

	if c.Breaks.Enabled {
		if c.Breaks.TweetInterval <= 0 {
			errs = append(errs, errors.New("break interval must be positive"))
		}
		if c.Breaks.MinMinutes <= 0 || c.Breaks.MaxMinutes < c.Breaks.MinMinutes {
			errs = append(errs, errors.New("break minute range is invalid"))
		}
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	switch strings.ToLower(c.Output.Format) {
	case "csv", "excel":
	default:
		errs = append(errs, errors.New("output format must be csv or excel"))
	}
	if c.Output.StateFile == "" {
		errs = append(errs, errors.New("state file path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if cookies, ok := flags["cookies"].(string); ok && cookies != "" {
		c.Auth.CookiesFile = cookies
	}
	if dir, ok := flags["output"].(string); ok && dir != "" {
		c.Output.Directory = dir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if maxTweets, ok := flags["max-tweets"].(int); ok && maxTweets > 0 {
		c.Scrape.MaxTweets = maxTweets
	}
	if saveEvery, ok := flags["save-every"].(int); ok && saveEvery > 0 {
		c.Scrape.SaveEvery = saveEvery
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
