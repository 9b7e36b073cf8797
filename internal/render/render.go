// Package render turns decoded images into terminal block art.
//
// Each character cell shows two vertically stacked pixels using the upper
// half block: the foreground colors the top pixel, the background the bottom.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const upperHalfBlock = "▀"

// Renderer draws images as ANSI half-block art
type Renderer struct {
	lg *lipgloss.Renderer
}

// New creates a Renderer. A nil lipgloss renderer uses the default
// (stdout-detected) color profile.
func New(lg *lipgloss.Renderer) *Renderer {
	if lg == nil {
		lg = lipgloss.DefaultRenderer()
	}
	return &Renderer{lg: lg}
}

// Art is rendered block art and its size in cells
type Art struct {
	Text   string
	Cols   int
	Rows   int
	Source image.Point // Source image dimensions in pixels
}

// Image scales img to fit width cells, keeping its aspect ratio.
// Terminal cells are roughly twice as tall as wide, which the half block
// compensates for: one cell row covers two pixel rows.
func (r *Renderer) Image(img image.Image, width int) Art {
	b := img.Bounds()
	src := image.Point{X: b.Dx(), Y: b.Dy()}
	if src.X == 0 || src.Y == 0 || width <= 0 {
		return Art{Source: src}
	}

	cols, pixelRows := FitSize(src, width)
	rows := (pixelRows + 1) / 2

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		r.renderRow(&sb, img, src, cols, pixelRows, row)
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}

	return Art{Text: sb.String(), Cols: cols, Rows: rows, Source: src}
}

// FitSize returns the target grid for a source of size src at width cells:
// columns and pixel rows (two per cell row).
func FitSize(src image.Point, width int) (cols, pixelRows int) {
	cols = min(width, src.X)
	pixelRows = max(1, src.Y*cols/src.X)
	return cols, pixelRows
}

// renderRow writes one cell row, merging runs of identical color pairs into
// a single styled span.
func (r *Renderer) renderRow(sb *strings.Builder, img image.Image, src image.Point, cols, pixelRows, row int) {
	var (
		runTop, runBottom string
		runLen            int
	)
	flush := func() {
		if runLen == 0 {
			return
		}
		style := r.lg.NewStyle().
			Foreground(lipgloss.Color(runTop)).
			Background(lipgloss.Color(runBottom))
		sb.WriteString(style.Render(strings.Repeat(upperHalfBlock, runLen)))
		runLen = 0
	}

	for col := 0; col < cols; col++ {
		top := hex(sample(img, src, cols, pixelRows, col, 2*row))
		bottom := top
		if 2*row+1 < pixelRows {
			bottom = hex(sample(img, src, cols, pixelRows, col, 2*row+1))
		}
		if runLen > 0 && (top != runTop || bottom != runBottom) {
			flush()
		}
		runTop, runBottom = top, bottom
		runLen++
	}
	flush()
}

// sample averages the source pixels covered by grid cell (x, y)
func sample(img image.Image, src image.Point, cols, rows, x, y int) color.Color {
	b := img.Bounds()
	x0 := b.Min.X + x*src.X/cols
	x1 := max(x0+1, b.Min.X+(x+1)*src.X/cols)
	y0 := b.Min.Y + y*src.Y/rows
	y1 := max(y0+1, b.Min.Y+(y+1)*src.Y/rows)

	var rs, gs, bs, n uint64
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			cr, cg, cb, _ := img.At(px, py).RGBA()
			rs += uint64(cr)
			gs += uint64(cg)
			bs += uint64(cb)
			n++
		}
	}
	return color.RGBA64{
		R: uint16(rs / n),
		G: uint16(gs / n),
		B: uint16(bs / n),
		A: 0xffff,
	}
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// Card renders a bordered text placeholder of the given width, used when an
// item has no decodable frame.
func (r *Renderer) Card(width int, lines ...string) Art {
	width = max(width, 12)
	style := r.lg.NewStyle().
		Width(width-2).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(1, 0)
	text := style.Render(strings.Join(lines, "\n"))
	return Art{
		Text: text,
		Cols: lipgloss.Width(text),
		Rows: lipgloss.Height(text),
	}
}
