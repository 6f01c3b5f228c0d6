// Package models defines the data types shared by the ingestion,
// aggregation, and rendering stages.
package models

// Outcomes holds per-category test result counts. Each record from the
// exporter usually carries 0/1 counts, but pre-aggregated exports are
// supported too.
type Outcomes struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Broken  int `json:"broken"`
	Skipped int `json:"skipped"`
	Unknown int `json:"unknown,omitempty"`
}

// Add accumulates other into o.
func (o *Outcomes) Add(other Outcomes) {
	o.Passed += other.Passed
	o.Failed += other.Failed
	o.Broken += other.Broken
	o.Skipped += other.Skipped
	o.Unknown += other.Unknown
}

// Total returns the tracked test count. Unknown participates only when the
// schema includes it.
func (o Outcomes) Total(includeUnknown bool) int {
	total := o.Passed + o.Failed + o.Broken + o.Skipped
	if includeUnknown {
		total += o.Unknown
	}
	return total
}

// TestRecord is one row of the exported results. An empty string means the
// test case carries no tag on that axis.
type TestRecord struct {
	Epic    string `json:"epic,omitempty"`
	Feature string `json:"feature,omitempty"`
	Story   string `json:"story,omitempty"`
	Outcomes
}

// Status is the three-tier health classification derived from pass rate.
// The label strings are an external contract with the dashboard.
type Status string

const (
	StatusAcceptable  Status = "Acceptable"
	StatusMaintenance Status = "Maintenance Advised"
	StatusReview      Status = "Review Required"
)

// EpicSummary is one aggregated group of test results.
type EpicSummary struct {
	Epic string `json:"epic"`
	Outcomes
	TotalTests int     `json:"total_tests"`
	PassRate   float64 `json:"pass_rate"`
	// HasRate is false for groups with zero tracked tests, where the pass
	// rate is undefined.
	HasRate bool   `json:"has_rate"`
	Status  Status `json:"status"`
}

// Table is the aggregated, sorted summary. The TOTAL row is not part of the
// table; renderers derive it via Totals.
type Table struct {
	Rows           []EpicSummary `json:"rows"`
	IncludeUnknown bool          `json:"include_unknown"`
}

// Totals sums the outcome columns and test counts across all rows.
func (t *Table) Totals() (Outcomes, int) {
	var o Outcomes
	var total int
	for _, r := range t.Rows {
		o.Add(r.Outcomes)
		total += r.TotalTests
	}
	return o, total
}
