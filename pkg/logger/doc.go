// Package logger provides the structured logging layer for the tweet
// scraper.
//
// It wraps the zerolog library behind a small Logger interface with
// support for:
// - Multiple log levels (Debug, Info, Warn, Error)
// - Structured logging with fields
// - Pretty console output with colors
// - File output with rotation support
// - A global logger instance for easy access
//
// Basic Usage:
//
//	import "xscraper/pkg/logger"
//
//	// Initialize the global logger from the loaded config
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "xscraper.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	log := logger.GetLogger()
//	log.Info("Session started")
//	log.WithField("query", "from:jack").Info("Searching")
//	log.WithError(err).Error("Failed to flush export file")
//
// Components that need their own logger take a Logger value instead of
// calling the globals, so tests can hand them NewNop().
//
// The logger supports the following configuration options:
// - Level: Log level (debug, info, warn, error, fatal)
// - File: Path to log file (empty for console only)
// - MaxSize: Maximum size in MB before rotation
// - MaxBackups: Number of old log files to keep
// - MaxAge: Maximum age in days for log files
// - Compress: Whether to compress old log files
package logger
