package render

import (
	"geoview/internal/geo"
	"geoview/internal/viewport"

	"github.com/gdamore/tcell/v2"
)

// LineLayer draws indexed polylines of one feature type. It is its own
// placement delegate: projected vertices are cached per feature and the
// cache is tied to the sequence of the transform it was computed with.
type LineLayer struct {
	Type  geo.FeatureType
	Char  rune
	Style tcell.Style

	index    *geo.FeatureIndex
	visible  bool
	sequence uint64
	cache    map[*geo.Feature][]projected
}

// projected is a vertex in surface pixels; ok is false outside the domain
type projected struct {
	at geo.XY
	ok bool
}

// NewLineLayer indexes the line features of one type
func NewLineLayer(ftype geo.FeatureType, features []*geo.Feature) *LineLayer {
	lines := make([]*geo.Feature, 0, len(features))
	for _, f := range features {
		if f.IsLine() {
			lines = append(lines, f)
		}
	}

	return &LineLayer{
		Type:    ftype,
		Char:    GetCharForFeature(ftype),
		Style:   GetStyleForFeature(ftype),
		index:   geo.NewFeatureIndex(lines),
		visible: true,
		cache:   make(map[*geo.Feature][]projected),
	}
}

// OnReset drops every cached vertex; they belong to the old transform
func (l *LineLayer) OnReset(v *viewport.Viewport, _ viewport.Element) {
	l.invalidate(v.Transform().Sequence())
}

// OnPosition does nothing: cached surface vertices survive a pan
func (l *LineLayer) OnPosition(*viewport.Viewport, viewport.Element) {}

// SetPosition implements viewport.Element; layers cover the whole surface
func (l *LineLayer) SetPosition(geo.XY) {}

// SetVisible implements viewport.Element
func (l *LineLayer) SetVisible(v bool) { l.visible = v }

// Visible reports whether the layer is drawn
func (l *LineLayer) Visible() bool { return l.visible }

// Len returns the number of indexed lines
func (l *LineLayer) Len() int { return l.index.Len() }

// Cached returns the number of features with projected vertices
func (l *LineLayer) Cached() int { return len(l.cache) }

func (l *LineLayer) invalidate(sequence uint64) {
	l.sequence = sequence
	clear(l.cache)
}

// vertices returns the surface vertices of f under t, projecting on demand
func (l *LineLayer) vertices(f *geo.Feature, t *geo.Transform) []projected {
	if l.sequence != t.Sequence() {
		l.invalidate(t.Sequence())
	}
	if pts, ok := l.cache[f]; ok {
		return pts
	}

	pts := make([]projected, len(f.Points))
	for i, ll := range f.Points {
		pts[i].at, pts[i].ok = t.ToSurface(ll)
	}
	l.cache[f] = pts
	return pts
}

// Draw draws the lines intersecting the visible area
func (l *LineLayer) Draw(c *Canvas, v *viewport.Viewport, grid Grid) {
	if !l.visible {
		return
	}

	offset := v.Offset()
	w, h := v.Size()
	lo := geo.XY{X: -1, Y: -grid.aspect()}
	hi := geo.XY{X: w + 1, Y: h + grid.aspect()}

	for _, f := range l.index.Search(v.Bounds()) {
		pts := l.vertices(f, v.Transform())
		for i := 0; i+1 < len(pts); i++ {
			if !pts[i].ok || !pts[i+1].ok {
				continue
			}
			a, b, ok := clipSegment(pts[i].at.Add(offset), pts[i+1].at.Add(offset), lo, hi)
			if !ok {
				continue
			}
			p1, p2 := grid.Cell(a), grid.Cell(b)
			DrawLine(c, p1.X, p1.Y, p2.X, p2.Y, l.Char, l.Style)
		}
	}
}

// clipSegment clips a-b to the box lo-hi (Liang-Barsky). Clipped endpoints
// are snapped exactly onto the edge that cut them.
func clipSegment(a, b, lo, hi geo.XY) (geo.XY, geo.XY, bool) {
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	in, out := -1, -1

	for i, edge := range [4][2]float64{
		{-d.X, a.X - lo.X},
		{d.X, hi.X - a.X},
		{-d.Y, a.Y - lo.Y},
		{d.Y, hi.Y - a.Y},
	} {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			if r > t0 {
				t0, in = r, i
			}
		} else {
			if r < t0 {
				return a, b, false
			}
			if r < t1 {
				t1, out = r, i
			}
		}
	}

	return snap(a.Add(d.Scale(t0)), in, lo, hi), snap(a.Add(d.Scale(t1)), out, lo, hi), true
}

// snap moves p onto clip edge i: 0 left, 1 right, 2 top, 3 bottom
func snap(p geo.XY, edge int, lo, hi geo.XY) geo.XY {
	switch edge {
	case 0:
		p.X = lo.X
	case 1:
		p.X = hi.X
	case 2:
		p.Y = lo.Y
	case 3:
		p.Y = hi.Y
	}
	return p
}
