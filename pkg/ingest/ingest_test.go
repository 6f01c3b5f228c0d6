package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicsum/pkg/models"
)

const sampleCSV = `Epic,Feature,Story,PASSED,FAILED,BROKEN,SKIPPED
Checkout,Cart,Add item,1,0,0,0
Checkout,Cart,Remove item,0,1,0,0
,,Orphan story,1,0,0,0
,,,0,0,0,1
`

func TestRead_Basic(t *testing.T) {
	records, err := New().Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, models.TestRecord{
		Epic:     "Checkout",
		Feature:  "Cart",
		Story:    "Add item",
		Outcomes: models.Outcomes{Passed: 1},
	}, records[0])

	assert.Equal(t, "Orphan story", records[2].Story)
	assert.Empty(t, records[2].Epic)
	assert.Equal(t, 1, records[3].Skipped)
}

func TestRead_BOMHeader(t *testing.T) {
	records, err := New().Read(strings.NewReader("\ufeff" + sampleCSV))
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestRead_MissingColumn(t *testing.T) {
	in := "Epic,Feature,Story,FAILED,BROKEN,SKIPPED\nA,,,0,0,0\n"
	_, err := New().Read(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"PASSED"`)
}

func TestRead_UnknownColumnOnlyWhenEnabled(t *testing.T) {
	// The UNKNOWN column is absent: fine by default, fatal when tracked.
	_, err := New().Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	_, err = New(WithUnknown(true)).Read(strings.NewReader(sampleCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"UNKNOWN"`)
}

func TestRead_UnknownColumnParsed(t *testing.T) {
	in := "Epic,Feature,Story,PASSED,FAILED,BROKEN,SKIPPED,UNKNOWN\nA,,,1,0,0,0,2\n"

	records, err := New(WithUnknown(true)).Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Unknown)

	// Untracked: the column is ignored entirely.
	records, err = New().Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Zero(t, records[0].Unknown)
}

func TestRead_BlankCountsAreZero(t *testing.T) {
	in := "Epic,Feature,Story,PASSED,FAILED,BROKEN,SKIPPED\nA,,,1,,,\n"
	records, err := New().Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.Outcomes{Passed: 1}, records[0].Outcomes)
}

func TestRead_NonNumericCount(t *testing.T) {
	in := "Epic,Feature,Story,PASSED,FAILED,BROKEN,SKIPPED\nA,,,1,0,0,0\nB,,,yes,0,0,0\n"
	_, err := New().Read(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `"PASSED"`)
	assert.Contains(t, err.Error(), `"yes"`)
}

func TestRead_NegativeCount(t *testing.T) {
	in := "Epic,Feature,Story,PASSED,FAILED,BROKEN,SKIPPED\nA,,,-1,0,0,0\n"
	_, err := New().Read(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}

func TestRead_EmptyInput(t *testing.T) {
	_, err := New().Read(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestRead_CustomColumns(t *testing.T) {
	in := "epic_name,feat,story,ok,ko,broken,skip\nA,,,1,0,0,0\n"
	cols := Columns{
		Epic: "epic_name", Feature: "feat", Story: "story",
		Passed: "ok", Failed: "ko", Broken: "broken", Skipped: "skip",
		Unknown: "unknown",
	}
	records, err := New(WithColumns(cols)).Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Epic)
	assert.Equal(t, 1, records[0].Passed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.csv")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	records, err := New().Load(path)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}
