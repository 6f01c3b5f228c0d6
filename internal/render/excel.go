package render

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName matches the dashboard contract.
const DefaultSheetName = "EPIC Summary"

// WriteExcel serializes the display table to an xlsx workbook at path.
// When publishPath is non-empty the same workbook is saved again under that
// fixed name so a dashboard can poll it without tracking date suffixes.
func WriteExcel(d *Display, path, publishPath, sheet string) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if sheet == "" {
		sheet = DefaultSheetName
	}

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("render: rename sheet: %w", err)
	}

	headerStyle, err := wb.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		return fmt.Errorf("render: header style: %w", err)
	}
	for col, label := range d.Labels {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("render: header cell: %w", err)
		}
		if err := wb.SetCellValue(sheet, cell, label); err != nil {
			return fmt.Errorf("render: header cell %s: %w", cell, err)
		}
		if err := wb.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("render: header style %s: %w", cell, err)
		}
	}

	fillStyles := make(map[string]int)
	for i, row := range d.Rows {
		rowStyle := 0
		if fill := d.Fills[i]; fill != neutralFill {
			style, ok := fillStyles[fill]
			if !ok {
				style, err = wb.NewStyle(&excelize.Style{
					Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
				})
				if err != nil {
					return fmt.Errorf("render: row style: %w", err)
				}
				fillStyles[fill] = style
			}
			rowStyle = style
		}

		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("render: data cell: %w", err)
			}
			if err := wb.SetCellValue(sheet, cell, cellValue(value)); err != nil {
				return fmt.Errorf("render: data cell %s: %w", cell, err)
			}
			if rowStyle != 0 {
				if err := wb.SetCellStyle(sheet, cell, cell, rowStyle); err != nil {
					return fmt.Errorf("render: data style %s: %w", cell, err)
				}
			}
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	if publishPath != "" {
		if err := wb.SaveAs(publishPath); err != nil {
			return fmt.Errorf("render: save %s: %w", publishPath, err)
		}
	}
	return nil
}

// cellValue stores counts as numbers so the dashboard can chart them
// without type coercion.
func cellValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}
