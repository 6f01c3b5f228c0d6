package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicsum/pkg/models"
)

func sampleTable() *models.Table {
	return &models.Table{
		Rows: []models.EpicSummary{
			{
				Epic:       "A",
				Outcomes:   models.Outcomes{Passed: 95, Failed: 5},
				TotalTests: 100,
				PassRate:   95,
				HasRate:    true,
				Status:     models.StatusAcceptable,
			},
			{
				Epic:       "B",
				Outcomes:   models.Outcomes{Passed: 70, Failed: 30},
				TotalTests: 100,
				PassRate:   70,
				HasRate:    true,
				Status:     models.StatusReview,
			},
		},
	}
}

func TestBuildDisplay_TotalRow(t *testing.T) {
	d, err := BuildDisplay(sampleTable())
	require.NoError(t, err)
	require.Len(t, d.Rows, 3)

	total := d.Rows[2]
	assert.Equal(t, []string{"TOTAL", "165", "35", "0", "0", "200", "", ""}, total)
	assert.Equal(t, neutralFill, d.Fills[2])
}

func TestBuildDisplay_RowFormatting(t *testing.T) {
	d, err := BuildDisplay(sampleTable())
	require.NoError(t, err)

	assert.Equal(t, DefaultLabels(false), d.Labels)
	assert.Equal(t, []string{"A", "95", "5", "0", "0", "100", "95.00%", "Acceptable"}, d.Rows[0])
	assert.Equal(t, statusFills[models.StatusAcceptable], d.Fills[0])
	assert.Equal(t, statusFills[models.StatusReview], d.Fills[1])
}

func TestBuildDisplay_UndefinedRateLeftBlank(t *testing.T) {
	table := &models.Table{
		Rows: []models.EpicSummary{
			{Epic: "empty", Status: models.StatusReview},
		},
	}

	d, err := BuildDisplay(table)
	require.NoError(t, err)
	rateCol := len(d.Labels) - 2
	assert.Empty(t, d.Rows[0][rateCol])
	assert.Equal(t, "Review Required", d.Rows[0][rateCol+1])
}

func TestBuildDisplay_UnknownColumn(t *testing.T) {
	table := &models.Table{
		IncludeUnknown: true,
		Rows: []models.EpicSummary{
			{
				Epic:       "A",
				Outcomes:   models.Outcomes{Passed: 1, Unknown: 2},
				TotalTests: 3,
				PassRate:   33.33,
				HasRate:    true,
				Status:     models.StatusReview,
			},
		},
	}

	d, err := BuildDisplay(table)
	require.NoError(t, err)
	assert.Contains(t, d.Labels, "Unknown")
	assert.Equal(t, []string{"A", "1", "0", "0", "0", "2", "3", "33.33%", "Review Required"}, d.Rows[0])
}

func TestBuildDisplay_LabelCountMismatch(t *testing.T) {
	// 8 derived columns, 9 labels: must fail before anything renders.
	nineLabels := append(DefaultLabels(false), "Extra")
	_, err := BuildDisplay(sampleTable(), WithLabels(nineLabels))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column labels")
}

func TestWriters_RefuseInvalidDisplay(t *testing.T) {
	d, err := BuildDisplay(sampleTable())
	require.NoError(t, err)
	d.Labels = append(d.Labels, "Extra")

	dir := t.TempDir()
	imgPath := filepath.Join(dir, "out.png")
	xlsxPath := filepath.Join(dir, "out.xlsx")

	require.Error(t, WriteImage(d, imgPath))
	require.Error(t, WriteExcel(d, xlsxPath, "", ""))

	_, err = os.Stat(imgPath)
	assert.True(t, os.IsNotExist(err), "image must not be created")
	_, err = os.Stat(xlsxPath)
	assert.True(t, os.IsNotExist(err), "workbook must not be created")
}

func TestWriteImage(t *testing.T) {
	d, err := BuildDisplay(sampleTable())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "table.png")
	require.NoError(t, WriteImage(d, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestDefaultPaths(t *testing.T) {
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Epic_Summary_Table_210826.png", DefaultImagePath(now))
	assert.Equal(t, "Epic_Summary_210826.xlsx", DefaultExcelPath(now))
}
