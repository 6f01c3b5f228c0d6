// Package epic aggregates test results by their JIRA Epic tag and
// classifies each group's health from its pass rate.
package epic

import (
	"math"
	"sort"

	"epicsum/pkg/models"
)

const (
	// UntaggedKey labels the single group collecting records with no
	// usable tag.
	UntaggedKey = "Test Cases Not Tagged"

	// NoEpicSuffix marks groups keyed by a Story tag because the records
	// carried no Epic.
	NoEpicSuffix = " - No EPIC Tagged"
)

// Classification thresholds on the rounded pass rate, in percent.
const (
	acceptableFloor  = 95
	maintenanceFloor = 80
)

// Analyzer groups records and derives per-group health.
type Analyzer struct {
	includeUnknown   bool
	groupingFallback bool
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithUnknown includes the UNKNOWN outcome column in total test counts.
func WithUnknown(enabled bool) Option {
	return func(a *Analyzer) {
		a.includeUnknown = enabled
	}
}

// WithGroupingFallback controls whether story-only records form their own
// groups. When disabled they fall into the untagged group, matching older
// report generations.
func WithGroupingFallback(enabled bool) Option {
	return func(a *Analyzer) {
		a.groupingFallback = enabled
	}
}

// New creates a new analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{groupingFallback: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds the sorted summary table. It never mutates records; an
// empty input produces an empty table.
func (a *Analyzer) Analyze(records []models.TestRecord) *models.Table {
	groups := make(map[string]*models.Outcomes)
	add := func(key string, o models.Outcomes) {
		g, ok := groups[key]
		if !ok {
			g = &models.Outcomes{}
			groups[key] = g
		}
		g.Add(o)
	}

	for _, r := range records {
		switch {
		case r.Epic != "":
			add(r.Epic, r.Outcomes)
		case a.groupingFallback && r.Feature == "" && r.Story != "":
			add(r.Story+NoEpicSuffix, r.Outcomes)
		default:
			add(UntaggedKey, r.Outcomes)
		}
	}

	rows := make([]models.EpicSummary, 0, len(groups))
	for key, o := range groups {
		row := models.EpicSummary{Epic: key, Outcomes: *o}
		row.TotalTests = o.Total(a.includeUnknown)
		if row.TotalTests > 0 {
			row.PassRate = round2(100 * float64(o.Passed) / float64(row.TotalTests))
			row.HasRate = true
			row.Status = classify(row.PassRate)
		} else {
			// Undefined pass rate: nothing passed, so the group goes
			// straight to review.
			row.Status = models.StatusReview
		}
		rows = append(rows, row)
	}

	// Status label ascending, pass rate descending within a status, epic
	// label as tiebreak so reruns are bit-identical.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Status != rows[j].Status {
			return rows[i].Status < rows[j].Status
		}
		if rows[i].PassRate != rows[j].PassRate {
			return rows[i].PassRate > rows[j].PassRate
		}
		return rows[i].Epic < rows[j].Epic
	})

	return &models.Table{Rows: rows, IncludeUnknown: a.includeUnknown}
}

func classify(passRate float64) models.Status {
	switch {
	case passRate >= acceptableFloor:
		return models.StatusAcceptable
	case passRate >= maintenanceFloor:
		return models.StatusMaintenance
	default:
		return models.StatusReview
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
