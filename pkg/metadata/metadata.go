package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the manifest file kept alongside the export files.
const ManifestName = "manifest.json"

// ExportRecord describes one export file produced by a scrape session
type ExportRecord struct {
	// Core identifiers
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
	Target    string `json:"target"`
	Query     string `json:"query,omitempty"`

	// Output
	Path   string `json:"path"`
	Format string `json:"format"`
	Tweets int    `json:"tweets"`

	// Date bounds of the collected tweets
	OldestTweet string `json:"oldest_tweet,omitempty"`
	NewestTweet string `json:"newest_tweet,omitempty"`

	// Timestamps
	CompletedAt time.Time `json:"completed_at"`
}

// Manifest records what each export file in a directory contains. It
// is updated as sessions finish, so a directory of spreadsheets stays
// self-describing.
type Manifest struct {
	path    string
	Records []ExportRecord `json:"exports"`
}

// Load reads the manifest from an output directory. A missing file
// yields an empty manifest.
func Load(dir string) (*Manifest, error) {
	m := &Manifest{path: filepath.Join(dir, ManifestName)}

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var file struct {
		Records []ExportRecord `json:"exports"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	m.Records = file.Records

	return m, nil
}

// Upsert adds the record, replacing any existing entry for the same
// output path.
func (m *Manifest) Upsert(record ExportRecord) {
	for i, existing := range m.Records {
		if existing.Path == record.Path {
			m.Records[i] = record
			return
		}
	}
	m.Records = append(m.Records, record)
}

// Find returns the record for an output path, or nil.
func (m *Manifest) Find(path string) *ExportRecord {
	for i := range m.Records {
		if m.Records[i].Path == path {
			return &m.Records[i]
		}
	}
	return nil
}

// Save writes the manifest atomically.
func (m *Manifest) Save() error {
	data, err := json.MarshalIndent(struct {
		Records []ExportRecord `json:"exports"`
	}{m.Records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	tempFile := m.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return os.Rename(tempFile, m.path)
}

// Path returns the manifest file location.
func (m *Manifest) Path() string {
	return m.path
}

// TotalTweets sums the tweet counts across all recorded exports.
func (m *Manifest) TotalTweets() int {
	total := 0
	for _, record := range m.Records {
		total += record.Tweets
	}
	return total
}
