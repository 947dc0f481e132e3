package render

import (
	"geoview/internal/debug"
	"geoview/internal/geo"
	"geoview/internal/viewport"

	"github.com/gdamore/tcell/v2"
)

// Marker is a glyph with an optional label placed at a geographic point.
// Its position comes either from an explicit record or from text attributes.
type Marker struct {
	Name  string
	Glyph rune
	Style tcell.Style

	record  *viewport.Placement
	attrs   map[string]string
	pos     geo.XY
	visible bool
}

// NewMarker creates a marker at a known position
func NewMarker(name string, glyph rune, at geo.LatLon) *Marker {
	return &Marker{
		Name:   name,
		Glyph:  glyph,
		Style:  StyleMarker,
		record: &viewport.Placement{Position: at},
	}
}

// MarkerFromFeature creates a marker for a point feature
func MarkerFromFeature(f *geo.Feature) *Marker {
	m := &Marker{
		Name:  f.Name,
		Glyph: GetCharForFeature(f.Type),
		Style: GetStyleForFeature(f.Type),
	}
	if f.Point != nil {
		m.record = &viewport.Placement{Position: *f.Point}
	}
	return m
}

// MarkerFromPlace creates a marker whose position is read from the place's
// attributes when it is placed. An invalid color falls back to the default style.
func MarkerFromPlace(p geo.Place) *Marker {
	m := &Marker{
		Name:  p.Name,
		Glyph: '◆',
		Style: StyleMarker,
		attrs: p.Attrs,
	}

	if hex := p.Attrs[geo.AttrColor]; hex != "" {
		color, err := ParseColor(hex)
		if err != nil {
			debug.Logger().Warn("ignoring marker color", "marker", p.Name, "error", err)
		} else {
			m.Style = m.Style.Foreground(color)
		}
	}
	return m
}

// SetPosition implements viewport.Element
func (m *Marker) SetPosition(p geo.XY) { m.pos = p }

// SetVisible implements viewport.Element
func (m *Marker) SetVisible(v bool) { m.visible = v }

// Position returns the last placed position
func (m *Marker) Position() geo.XY { return m.pos }

// Visible reports whether the last placement succeeded
func (m *Marker) Visible() bool { return m.visible }

// GeoRecord implements viewport.GeoSource
func (m *Marker) GeoRecord() (viewport.Placement, bool) {
	if m.record == nil {
		return viewport.Placement{}, false
	}
	return *m.record, true
}

// Attr implements viewport.Attributes
func (m *Marker) Attr(name string) (string, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

// Draw draws the glyph and label with the glyph at cell
func (m *Marker) Draw(c *Canvas, cell geo.Point) {
	c.Set(cell.X, cell.Y, m.Glyph, m.Style)
	if m.Name != "" {
		c.DrawText(cell.X+1, cell.Y, m.Name, StyleLabel)
	}
}
