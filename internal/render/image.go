package render

import (
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	cellHeight   = 34.0
	cellPadX     = 10.0
	fontSize     = 14.0
	minColWidth  = 80.0
	maxEpicWidth = 560.0
	gridColor    = "#444444"
	textColor    = "#000000"
)

// WriteImage renders the display table to a PNG at path.
func WriteImage(d *Display, path string) error {
	if err := d.Validate(); err != nil {
		return err
	}

	regular, err := loadFace(goregular.TTF, fontSize)
	if err != nil {
		return fmt.Errorf("render: load font: %w", err)
	}
	bold, err := loadFace(gobold.TTF, fontSize)
	if err != nil {
		return fmt.Errorf("render: load font: %w", err)
	}

	widths := columnWidths(d, regular, bold)

	var totalW float64
	for _, w := range widths {
		totalW += w
	}
	totalH := cellHeight * float64(len(d.Rows)+1)

	dc := gg.NewContext(int(totalW)+1, int(totalH)+1)
	dc.SetHexColor(neutralFill)
	dc.Clear()

	dc.SetFontFace(bold)
	drawRow(dc, d.Labels, widths, 0, headerFill, true)

	dc.SetFontFace(regular)
	for i, row := range d.Rows {
		drawRow(dc, row, widths, float64(i+1)*cellHeight, d.Fills[i], false)
	}

	return dc.SavePNG(path)
}

// columnWidths sizes each column to its widest cell, padded and bounded.
// The epic column is capped so one long label cannot blow up the canvas.
func columnWidths(d *Display, regular, bold font.Face) []float64 {
	measure := gg.NewContext(1, 1)

	widths := make([]float64, len(d.Labels))
	measure.SetFontFace(bold)
	for i, label := range d.Labels {
		w, _ := measure.MeasureString(label)
		widths[i] = w
	}

	measure.SetFontFace(regular)
	for _, row := range d.Rows {
		for i, c := range row {
			if w, _ := measure.MeasureString(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for i := range widths {
		widths[i] += 2 * cellPadX
		if widths[i] < minColWidth {
			widths[i] = minColWidth
		}
	}
	if widths[0] > maxEpicWidth {
		widths[0] = maxEpicWidth
	}
	return widths
}

func drawRow(dc *gg.Context, row []string, widths []float64, y float64, fill string, header bool) {
	x := 0.0
	for i, c := range row {
		w := widths[i]

		dc.SetHexColor(fill)
		dc.DrawRectangle(x, y, w, cellHeight)
		dc.Fill()
		dc.SetHexColor(gridColor)
		dc.SetLineWidth(1)
		dc.DrawRectangle(x, y, w, cellHeight)
		dc.Stroke()

		dc.SetHexColor(textColor)
		text := fitString(dc, c, w-2*cellPadX)
		if i == 0 && !header {
			dc.DrawStringAnchored(text, x+cellPadX, y+cellHeight/2, 0, 0.35)
		} else {
			dc.DrawStringAnchored(text, x+w/2, y+cellHeight/2, 0.5, 0.35)
		}
		x += w
	}
}

// fitString truncates s with an ellipsis until it fits the given width.
func fitString(dc *gg.Context, s string, max float64) string {
	if w, _ := dc.MeasureString(s); w <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if w, _ := dc.MeasureString(candidate); w <= max {
			return candidate
		}
	}
	return string(runes)
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
