package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// exportExts lists the file extensions the scanner treats as export
// files produced by a scrape session.
var exportExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// Manager handles the export directory: it creates the directory,
// tracks which export files already exist, and answers duplicate
// checks before a session opens a sink.
type Manager struct {
	outputDir string
	exports   map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new export directory manager
func NewManager(outputDir string) (*Manager, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		exports:   make(map[string]bool),
	}

	if err := manager.scanExistingExports(); err != nil {
		return nil, fmt.Errorf("failed to scan existing exports: %w", err)
	}

	return manager, nil
}

// scanExistingExports scans the output directory for export files left
// by earlier sessions
func (m *Manager) scanExistingExports() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && exportExts[filepath.Ext(entry.Name())] {
			m.exports[entry.Name()] = true
		}
	}

	return nil
}

// HasExport reports whether an export file with the given name already
// exists in the output directory
func (m *Manager) HasExport(name string) bool {
	m.mu.RLock()
	if m.exports[name] {
		m.mu.RUnlock()
		return true
	}
	m.mu.RUnlock()

	// Double-check on disk: another process may have written it since
	// the scan.
	if _, err := os.Stat(filepath.Join(m.outputDir, name)); err == nil {
		m.mu.Lock()
		m.exports[name] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// RecordExport registers a freshly written export file
func (m *Manager) RecordExport(path string) {
	m.mu.Lock()
	m.exports[filepath.Base(path)] = true
	m.mu.Unlock()
}

// Exports returns the known export file names in sorted order
func (m *Manager) Exports() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.exports))
	for name := range m.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetExportCount returns the number of known export files
func (m *Manager) GetExportCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.exports)
}
