package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// sheetNameMax is the spreadsheet format's hard sheet title limit.
const sheetNameMax = 31

// sheetNameStrip holds the characters spreadsheet sheet titles reject,
// plus a few that break shell quoting when titles leak into filenames.
const sheetNameStrip = `\/*[]:?|()<>"'{}`

// ExcelSink appends rows to a single-sheet workbook. The workbook lives
// in memory between flushes; Flush serializes the whole file, so the
// format is best suited to bounded scrapes.
type ExcelSink struct {
	path  string
	sheet string
	f     *excelize.File
	row   int
}

// NewExcelSink opens or creates a workbook at path. Fresh workbooks get
// one sheet named after the sanitized title with the header row in row 1.
// On resume the first sheet is reused and rows continue below the
// existing content.
func NewExcelSink(path, title string, resume bool) (*ExcelSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if resume {
		return reopenExcel(path)
	}

	f := excelize.NewFile()
	sheet := SanitizeSheetName(title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	s := &ExcelSink{path: path, sheet: sheet, f: f, row: 1}
	if err := s.writeRow(header()); err != nil {
		f.Close()
		return nil, err
	}
	if err := s.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func reopenExcel(path string) (*ExcelSink, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen workbook: %w", err)
	}

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read existing rows: %w", err)
	}

	return &ExcelSink{path: path, sheet: sheet, f: f, row: len(rows) + 1}, nil
}

// writeRow writes at the next free row. s.row is 1-based.
func (s *ExcelSink) writeRow(row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := s.f.SetSheetRow(s.sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	s.row++
	return nil
}

func (s *ExcelSink) Append(row []string) error {
	return s.writeRow(row)
}

func (s *ExcelSink) Flush() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (s *ExcelSink) Close() error {
	flushErr := s.Flush()
	closeErr := s.f.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

func (s *ExcelSink) Path() string {
	return s.path
}

// SanitizeSheetName strips characters sheet titles reject and clamps
// the result to the 31-character limit. An empty or fully-stripped
// title falls back to a timestamped name so sheet creation never fails.
func SanitizeSheetName(title string) string {
	var b strings.Builder
	for _, r := range title {
		if strings.ContainsRune(sheetNameStrip, r) {
			continue
		}
		b.WriteRune(r)
	}

	name := strings.TrimSpace(b.String())
	if name == "" {
		return "Scrape_" + time.Now().UTC().Format("20060102_150405")
	}
	// Clamp by runes; a byte slice could cut a multi-byte title mid-rune.
	if runes := []rune(name); len(runes) > sheetNameMax {
		name = strings.TrimSpace(string(runes[:sheetNameMax]))
	}
	return name
}
