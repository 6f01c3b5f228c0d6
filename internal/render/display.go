// Package render projects an aggregated summary table into the shareable
// artifacts: a PNG table image and an xlsx workbook. Both artifacts are
// serialized from the same Display value so they can never diverge.
package render

import (
	"fmt"
	"strconv"
	"time"

	"epicsum/pkg/models"
)

// Cell fill colors keyed by status, shared by every projection.
var statusFills = map[models.Status]string{
	models.StatusAcceptable:  "#90EE90", // light green
	models.StatusMaintenance: "#FFFF00", // yellow
	models.StatusReview:      "#FFB6C1", // light pink
}

const (
	headerFill  = "#AFEEEE" // pale turquoise
	neutralFill = "#FFFFFF"
)

// Display is the final render-ready table: column labels, formatted cells
// including the trailing TOTAL row, and a background fill per data row.
type Display struct {
	Labels []string
	Rows   [][]string
	Fills  []string // parallel to Rows
}

// Option configures BuildDisplay.
type Option func(*buildOptions)

type buildOptions struct {
	labels []string
}

// WithLabels overrides the column headings. The label count must match the
// derived column count; BuildDisplay fails otherwise.
func WithLabels(labels []string) Option {
	return func(o *buildOptions) {
		o.labels = labels
	}
}

// DefaultLabels returns the fixed column order for the given schema.
func DefaultLabels(includeUnknown bool) []string {
	l := []string{"Epic", "Passed", "Failed", "Broken", "Skipped"}
	if includeUnknown {
		l = append(l, "Unknown")
	}
	return append(l, "Total Tests", "Pass Rate %", "Status")
}

// BuildDisplay formats every summary row, appends the TOTAL row, and
// validates labels against the row width before any writer runs. The TOTAL
// row is derived here only and never feeds back into row statistics.
func BuildDisplay(t *models.Table, opts ...Option) (*Display, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	d := &Display{Labels: bo.labels}
	if d.Labels == nil {
		d.Labels = DefaultLabels(t.IncludeUnknown)
	}

	for _, r := range t.Rows {
		rate := ""
		if r.HasRate {
			rate = strconv.FormatFloat(r.PassRate, 'f', 2, 64) + "%"
		}
		d.Rows = append(d.Rows, cells(t.IncludeUnknown, r.Epic, r.Outcomes, r.TotalTests, rate, string(r.Status)))
		fill := neutralFill
		if f, ok := statusFills[r.Status]; ok {
			fill = f
		}
		d.Fills = append(d.Fills, fill)
	}

	totals, grand := t.Totals()
	d.Rows = append(d.Rows, cells(t.IncludeUnknown, "TOTAL", totals, grand, "", ""))
	d.Fills = append(d.Fills, neutralFill)

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the label count against every row. Writers call this
// again before opening any output file.
func (d *Display) Validate() error {
	for i, row := range d.Rows {
		if len(row) != len(d.Labels) {
			return fmt.Errorf("render: row %d has %d cells but %d column labels are configured", i, len(row), len(d.Labels))
		}
	}
	if len(d.Fills) != len(d.Rows) {
		return fmt.Errorf("render: %d row fills for %d rows", len(d.Fills), len(d.Rows))
	}
	return nil
}

func cells(includeUnknown bool, label string, o models.Outcomes, total int, rate, status string) []string {
	row := []string{label, strconv.Itoa(o.Passed), strconv.Itoa(o.Failed), strconv.Itoa(o.Broken), strconv.Itoa(o.Skipped)}
	if includeUnknown {
		row = append(row, strconv.Itoa(o.Unknown))
	}
	return append(row, strconv.Itoa(total), rate, status)
}

// DefaultImagePath returns the date-stamped default image artifact name.
func DefaultImagePath(now time.Time) string {
	return "Epic_Summary_Table_" + now.Format("020106") + ".png"
}

// DefaultExcelPath returns the date-stamped default workbook name.
func DefaultExcelPath(now time.Time) string {
	return "Epic_Summary_" + now.Format("020106") + ".xlsx"
}
