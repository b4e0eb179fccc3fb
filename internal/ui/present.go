package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/canvas"
)

// halfBlock paints the upper pixel as foreground and the lower as background,
// giving two square-ish pixels per terminal cell.
const halfBlock = "▀"

// cell is one terminal cell of the presented frame.
type cell struct {
	text   string
	fg, bg color.RGBA
}

func hexRGB(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

// present converts a rendered frame into terminal rows. Each cell covers
// two pixel rows; labels are overlaid as text at their device position.
func present(img *image.RGBA, labels []canvas.Label) string {
	bounds := img.Bounds()
	cols := bounds.Dx()
	rows := (bounds.Dy() + 1) / 2
	if cols == 0 || rows == 0 {
		return ""
	}

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			top := img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+2*y)
			bottom := top
			if 2*y+1 < bounds.Dy() {
				bottom = img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+2*y+1)
			}
			grid[y][x] = cell{text: halfBlock, fg: top, bg: bottom}
		}
	}

	for _, l := range labels {
		x, y := int(l.At.X), int(l.At.Y)/2
		if y < 0 || y >= rows {
			continue
		}
		fg := l.Color.NRGBA()
		for i, r := range []rune(l.Text) {
			cx := x + i
			if cx < 0 {
				continue
			}
			if cx >= cols {
				break
			}
			bg := grid[y][cx].bg
			grid[y][cx] = cell{text: string(r), fg: color.RGBA{R: fg.R, G: fg.G, B: fg.B, A: 255}, bg: bg}
		}
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		writeRow(&b, row)
	}
	return b.String()
}

// writeRow styles runs of identically colored cells together.
func writeRow(b *strings.Builder, row []cell) {
	var run strings.Builder
	start := 0
	for x := 1; x <= len(row); x++ {
		if x < len(row) && row[x].fg == row[start].fg && row[x].bg == row[start].bg {
			continue
		}
		run.Reset()
		for _, c := range row[start:x] {
			run.WriteString(c.text)
		}
		style := lipgloss.NewStyle().
			Foreground(hexRGB(row[start].fg)).
			Background(hexRGB(row[start].bg))
		b.WriteString(style.Render(run.String()))
		start = x
	}
}

// Frame renders the raster's current contents as terminal text.
func Frame(r *canvas.Raster) string {
	return present(r.Image(), r.Labels())
}
