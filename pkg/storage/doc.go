// Package storage manages the export directory for scrape sessions.
//
// The storage package handles:
//   - Creating the output directory before a session opens its sink
//   - Scanning for export files left by earlier sessions
//   - Tracking export files written during the current run
//
// The Manager type is the primary interface. It keeps an in-memory set
// of known export file names so duplicate checks do not hit the disk
// on every call, falling back to a stat when the cache misses.
//
// Usage:
//
//	manager, err := storage.NewManager("output_directory")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if manager.HasExport("jack_tweets.csv") {
//	    // An earlier session already wrote this file.
//	}
package storage
