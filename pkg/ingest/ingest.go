// Package ingest loads test-automation result exports into memory.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"epicsum/pkg/models"
)

// Columns names the header cells the upstream exporter writes. Names are
// matched exactly as written by the exporter.
type Columns struct {
	Epic    string
	Feature string
	Story   string
	Passed  string
	Failed  string
	Broken  string
	Skipped string
	Unknown string
}

// DefaultColumns matches the Allure weekly export contract.
func DefaultColumns() Columns {
	return Columns{
		Epic:    "Epic",
		Feature: "Feature",
		Story:   "Story",
		Passed:  "PASSED",
		Failed:  "FAILED",
		Broken:  "BROKEN",
		Skipped: "SKIPPED",
		Unknown: "UNKNOWN",
	}
}

// Loader reads TestRecords from a delimited export.
type Loader struct {
	columns     Columns
	withUnknown bool
}

// Option configures the Loader.
type Option func(*Loader)

// WithColumns overrides the expected header names.
func WithColumns(c Columns) Option {
	return func(l *Loader) {
		l.columns = c
	}
}

// WithUnknown requires and reads the UNKNOWN outcome column.
func WithUnknown(enabled bool) Option {
	return func(l *Loader) {
		l.withUnknown = enabled
	}
}

// New creates a new loader.
func New(opts ...Option) *Loader {
	l := &Loader{columns: DefaultColumns()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all records from the file at path.
func (l *Loader) Load(path string) ([]models.TestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()
	return l.Read(f)
}

// Read parses records from r. The first row must be the header; a run with
// a malformed row aborts rather than silently coercing values.
func (l *Loader) Read(r io.Reader) ([]models.TestRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("ingest: empty input, no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	// Excel-produced exports prefix the header with a BOM.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	required := []string{
		l.columns.Epic, l.columns.Feature, l.columns.Story,
		l.columns.Passed, l.columns.Failed, l.columns.Broken, l.columns.Skipped,
	}
	if l.withUnknown {
		required = append(required, l.columns.Unknown)
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("ingest: required column %q not found in header", name)
		}
	}

	var records []models.TestRecord
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: row %d: %w", row, err)
		}

		rec := models.TestRecord{
			Epic:    cell(fields, idx[l.columns.Epic]),
			Feature: cell(fields, idx[l.columns.Feature]),
			Story:   cell(fields, idx[l.columns.Story]),
		}
		if rec.Passed, err = count(fields, idx[l.columns.Passed], l.columns.Passed, row); err != nil {
			return nil, err
		}
		if rec.Failed, err = count(fields, idx[l.columns.Failed], l.columns.Failed, row); err != nil {
			return nil, err
		}
		if rec.Broken, err = count(fields, idx[l.columns.Broken], l.columns.Broken, row); err != nil {
			return nil, err
		}
		if rec.Skipped, err = count(fields, idx[l.columns.Skipped], l.columns.Skipped, row); err != nil {
			return nil, err
		}
		if l.withUnknown {
			if rec.Unknown, err = count(fields, idx[l.columns.Unknown], l.columns.Unknown, row); err != nil {
				return nil, err
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func cell(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// count parses an outcome cell. Blank cells count as zero; anything else
// must be a non-negative integer.
func count(fields []string, i int, name string, row int) (int, error) {
	raw := cell(fields, i)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("ingest: row %d: column %q: non-numeric count %q", row, name, raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("ingest: row %d: column %q: negative count %d", row, name, n)
	}
	return n, nil
}
