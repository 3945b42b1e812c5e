// Package export provides append-only row sinks over the two supported
// output formats. Sinks buffer rows and persist on Flush; the engine
// flushes every fixed number of accepted records and unconditionally on
// termination, bounding data loss to one flush interval.
package export

import (
	"fmt"
	"strings"

	"xscraper/pkg/models"
)

// Sink is an append-only row writer.
type Sink interface {
	// Append buffers one record row.
	Append(row []string) error
	// Flush persists everything appended so far.
	Flush() error
	// Close flushes and releases the underlying file.
	Close() error
	// Path returns the absolute output file path.
	Path() string
}

// Format names a supported output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "csv"
}

// New creates a sink for the format. A fresh sink writes the header
// row; resume reopens an existing file in append mode and writes no
// header. title only matters for spreadsheet mode, where it becomes
// the sanitized sheet name.
func New(format Format, path, title string, resume bool) (Sink, error) {
	switch format {
	case FormatCSV:
		return NewCSVSink(path, resume)
	case FormatExcel:
		return NewExcelSink(path, title, resume)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// header returns the shared column set.
func header() []string {
	return models.ExportHeader
}
