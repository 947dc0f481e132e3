package render

import (
	"geoview/internal/viewport"

	"github.com/gdamore/tcell/v2"
)

// Overlay is an element that draws itself in viewport cells, outside the
// scrolling surface (status bars, legends).
type Overlay interface {
	DrawOverlay(c *Canvas)
}

// MapRenderer draws a viewport's attached elements to a canvas
type MapRenderer struct {
	viewport *viewport.Viewport
	canvas   *Canvas
	grid     Grid
	layers   []*LineLayer
}

// NewMapRenderer creates a new map renderer
func NewMapRenderer(v *viewport.Viewport, canvas *Canvas, grid Grid) *MapRenderer {
	return &MapRenderer{
		viewport: v,
		canvas:   canvas,
		grid:     grid,
	}
}

// AddLayer attaches a line layer; layers draw below markers in the order added
func (m *MapRenderer) AddLayer(l *LineLayer) {
	m.viewport.Attach(l)
	m.layers = append(m.layers, l)
}

// AddMarker attaches a marker with the default placement delegate
func (m *MapRenderer) AddMarker(mk *Marker) {
	m.viewport.Attach(mk)
}

// AddOverlay attaches an overlay element as unmanaged
func (m *MapRenderer) AddOverlay(el viewport.Element) {
	m.viewport.Attach(el, viewport.WithUnmanaged())
}

// Render draws layers, then markers, then overlays
func (m *MapRenderer) Render() {
	m.canvas.Clear()

	for _, l := range m.layers {
		l.Draw(m.canvas, m.viewport, m.grid)
	}

	var overlays []Overlay
	m.viewport.Each(func(b *viewport.Binding) bool {
		switch el := b.Element().(type) {
		case *Marker:
			m.renderMarker(el, b.Managed())
		case Overlay:
			overlays = append(overlays, el)
		}
		return true
	})

	for _, o := range overlays {
		o.DrawOverlay(m.canvas)
	}
}

func (m *MapRenderer) renderMarker(mk *Marker, managed bool) {
	if !mk.Visible() {
		return
	}

	pos := mk.Position()
	if managed {
		pos = pos.Add(m.viewport.Offset())
	}

	cell := m.grid.Cell(pos)
	if cell.X < 0 || cell.X >= m.canvas.Width() || cell.Y < 0 || cell.Y >= m.canvas.Height() {
		return
	}
	mk.Draw(m.canvas, cell)
}

// Canvas returns the canvas being drawn to
func (m *MapRenderer) Canvas() *Canvas {
	return m.canvas
}

// Grid returns the pixel to cell mapping
func (m *MapRenderer) Grid() Grid {
	return m.grid
}

// UpdateCanvas updates the renderer's canvas
func (m *MapRenderer) UpdateCanvas(canvas *Canvas) {
	m.canvas = canvas
}

// DrawLine implements Bresenham's line algorithm for drawing lines on the canvas
func DrawLine(c *Canvas, x0, y0, x1, y1 int, char rune, style tcell.Style) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)

	sx := -1
	if x0 < x1 {
		sx = 1
	}

	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy

	for {
		c.Set(x0, y0, char, style)

		if x0 == x1 && y0 == y1 {
			break
		}

		e2 := 2 * err

		if e2 > -dy {
			err -= dy
			x0 += sx
		}

		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// abs returns the absolute value of an integer
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
