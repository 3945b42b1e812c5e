package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVSink appends rows to a CSV file. Rows pass through the csv writer's
// buffer and reach disk on Flush, which also syncs the file so a crash
// between flushes cannot lose acknowledged rows.
type CSVSink struct {
	path string
	file *os.File
	w    *csv.Writer
}

// NewCSVSink opens path for writing. With resume false the file is
// created (truncating any existing one) and the header row is written;
// with resume true the file is opened in append mode and rows continue
// after the existing content.
func NewCSVSink(path string, resume bool) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}

	s := &CSVSink{
		path: path,
		file: file,
		w:    csv.NewWriter(file),
	}

	if !resume {
		if err := s.w.Write(header()); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	return s, nil
}

func (s *CSVSink) Append(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (s *CSVSink) Flush() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync export file: %w", err)
	}
	return nil
}

func (s *CSVSink) Close() error {
	flushErr := s.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func (s *CSVSink) Path() string {
	return s.path
}
