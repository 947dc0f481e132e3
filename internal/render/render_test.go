package render

import (
	"math"
	"strconv"
	"testing"

	"geoview/internal/geo"
	"geoview/internal/viewport"

	"github.com/gdamore/tcell/v2"
)

func newTestRenderer(t *testing.T, cols, rows int) (*MapRenderer, *viewport.Viewport) {
	t.Helper()
	grid := Grid{Aspect: 2}
	w, h := grid.Size(cols, rows)
	v, err := viewport.New(geo.SphericalMercator{}, viewport.WithSize(w, h))
	if err != nil {
		t.Fatalf("Failed to create viewport: %v", err)
	}
	return NewMapRenderer(v, NewCanvas(cols, rows), grid), v
}

func TestGrid(t *testing.T) {
	g := Grid{Aspect: 2}
	if cell := g.Cell(geo.XY{X: 10.7, Y: 9.9}); cell != (geo.Point{X: 10, Y: 4}) {
		t.Errorf("Expected cell (10, 4), got %v", cell)
	}
	if px := g.Pixel(geo.Point{X: 3, Y: 5}); px != (geo.XY{X: 3.5, Y: 11}) {
		t.Errorf("Expected pixel (3.5, 11), got %v", px)
	}
	if w, h := g.Size(80, 24); w != 80 || h != 48 {
		t.Errorf("Expected size 80x48, got %vx%v", w, h)
	}
	if cell := (Grid{}).Cell(geo.XY{X: -0.5, Y: 3}); cell != (geo.Point{X: -1, Y: 3}) {
		t.Errorf("Expected zero aspect to act as 1, got %v", cell)
	}
}

func TestRenderMarkerAtCenter(t *testing.T) {
	r, v := newTestRenderer(t, 40, 20)

	mk := NewMarker("HQ", '*', v.Center())
	r.AddMarker(mk)
	r.Render()

	if got := r.Canvas().Get(20, 10).Char; got != '*' {
		t.Errorf("Expected marker glyph at (20, 10), got %q", got)
	}
	if got := r.Canvas().Get(21, 10).Char; got != 'H' {
		t.Errorf("Expected label after glyph, got %q", got)
	}

	// Pan east: the marker moves west
	if err := v.MoveBy(1.5, 0); err != nil {
		t.Fatalf("MoveBy failed: %v", err)
	}
	r.Render()
	if got := r.Canvas().Get(18, 10).Char; got != '*' {
		t.Errorf("Expected marker at (18, 10) after pan, got %q", got)
	}
}

func TestRenderHidesUnplaceableMarker(t *testing.T) {
	r, _ := newTestRenderer(t, 10, 5)

	pole := NewMarker("", 'P', geo.LatLon{Lat: 90, Lon: 0})
	r.AddMarker(pole)
	r.Render()

	if pole.Visible() {
		t.Error("Expected pole marker hidden")
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			if r.Canvas().Get(x, y).Char == 'P' {
				t.Fatalf("Expected no glyph for hidden marker, found one at (%d, %d)", x, y)
			}
		}
	}
}

func TestMarkerFromPlace(t *testing.T) {
	r, v := newTestRenderer(t, 40, 20)
	c := v.Center()

	mk := MarkerFromPlace(geo.Place{Name: "x", Attrs: map[string]string{
		geo.AttrLatitude:  formatFloat(c.Lat),
		geo.AttrLongitude: formatFloat(c.Lon),
		geo.AttrXOffset:   "4",
		geo.AttrColor:     "#ff0000",
	}})
	r.AddMarker(mk)

	if !mk.Visible() {
		t.Fatal("Expected attribute marker visible")
	}
	if math.Abs(mk.Position().X-4) > 1e-6 {
		t.Errorf("Expected x offset applied, got %v", mk.Position())
	}
	fg, _, _ := mk.Style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("Expected red foreground, got %v", fg)
	}

	bad := MarkerFromPlace(geo.Place{Name: "y", Attrs: map[string]string{geo.AttrColor: "red"}})
	if bad.Style != StyleMarker {
		t.Error("Expected invalid color to keep default style")
	}
	r.AddMarker(bad)
	if bad.Visible() {
		t.Error("Expected marker without coordinates hidden")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#0f0")
	if err != nil {
		t.Fatalf("ParseColor failed: %v", err)
	}
	if c != tcell.NewRGBColor(0, 255, 0) {
		t.Errorf("Expected green, got %v", c)
	}
	if _, err := ParseColor("nope"); err == nil {
		t.Error("Expected error for invalid color")
	}
}

func TestLineLayerCacheFollowsTransform(t *testing.T) {
	r, v := newTestRenderer(t, 40, 20)
	c := v.Center()

	river := geo.NewLineFeature(geo.FeatureRiver, []geo.LatLon{
		{Lat: c.Lat, Lon: c.Lon - 1},
		{Lat: c.Lat, Lon: c.Lon + 1},
	})
	layer := NewLineLayer(geo.FeatureRiver, []*geo.Feature{river, geo.NewPointFeature(geo.FeaturePlace, c, "skip")})
	if layer.Len() != 1 {
		t.Fatalf("Expected only line features indexed, got %d", layer.Len())
	}
	r.AddLayer(layer)

	r.Render()
	if layer.Cached() != 1 {
		t.Errorf("Expected 1 cached feature, got %d", layer.Cached())
	}
	if got := r.Canvas().Get(20, 10).Char; got != '~' {
		t.Errorf("Expected river through the middle, got %q", got)
	}

	// Panning keeps the cache
	if err := v.MoveBy(0, 3); err != nil {
		t.Fatalf("MoveBy failed: %v", err)
	}
	if layer.Cached() != 1 {
		t.Errorf("Expected cache to survive a pan, got %d", layer.Cached())
	}
	r.Render()
	if got := r.Canvas().Get(20, 8).Char; got != '~' {
		t.Errorf("Expected river higher up after pan, got %q", got)
	}

	// Zooming drops it
	if err := v.SetLevel(v.Level()+1, nil); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if layer.Cached() != 0 {
		t.Errorf("Expected cache cleared on reset, got %d", layer.Cached())
	}

	layer.SetVisible(false)
	r.Render()
	if layer.Cached() != 0 {
		t.Error("Expected hidden layer to skip projection")
	}
}

func TestLineLayerStaleSequence(t *testing.T) {
	_, v := newTestRenderer(t, 10, 10)
	f := geo.NewLineFeature(geo.FeatureBorder, []geo.LatLon{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}})
	layer := NewLineLayer(geo.FeatureBorder, []*geo.Feature{f})

	first := layer.vertices(f, v.Transform())
	other, err := v.Transform().Rescale(v.Resolution()/2, nil)
	if err != nil {
		t.Fatalf("Rescale failed: %v", err)
	}

	// A lookup against another transform must not reuse the cached vertices
	second := layer.vertices(f, other)
	if math.Abs(second[1].at.X-first[1].at.X*2) > 1e-6 {
		t.Errorf("Expected vertices recomputed at the new scale, got %v vs %v", second[1].at, first[1].at)
	}
}

func TestClipSegment(t *testing.T) {
	lo, hi := geo.XY{X: 0, Y: 0}, geo.XY{X: 10, Y: 10}

	a, b, ok := clipSegment(geo.XY{X: -1e9, Y: 5}, geo.XY{X: 1e9, Y: 5}, lo, hi)
	if !ok || a != (geo.XY{X: 0, Y: 5}) || b != (geo.XY{X: 10, Y: 5}) {
		t.Errorf("Expected clip to [0, 10], got %v %v ok=%v", a, b, ok)
	}

	// Steep diagonal far outside: both ends land on the box edges
	a, b, ok = clipSegment(geo.XY{X: 5 - 3e8, Y: 5 - 1e9}, geo.XY{X: 5 + 3e8, Y: 5 + 1e9}, lo, hi)
	if !ok || a.Y != 0 || b.Y != 10 || math.Abs(a.X-3.5) > 1e-5 || math.Abs(b.X-6.5) > 1e-5 {
		t.Errorf("Expected diagonal clipped to y in [0, 10], got %v %v ok=%v", a, b, ok)
	}

	if _, _, ok := clipSegment(geo.XY{X: -5, Y: -5}, geo.XY{X: -1, Y: 20}, lo, hi); ok {
		t.Error("Expected segment left of the box rejected")
	}

	a, b, ok = clipSegment(geo.XY{X: 2, Y: 2}, geo.XY{X: 3, Y: 4}, lo, hi)
	if !ok || a != (geo.XY{X: 2, Y: 2}) || b != (geo.XY{X: 3, Y: 4}) {
		t.Errorf("Expected inside segment unchanged, got %v %v", a, b)
	}
}

func TestDrawTextWideRunes(t *testing.T) {
	c := NewCanvas(10, 1)
	n := c.DrawText(0, 0, "a東b", StyleLabel)
	if n != 4 {
		t.Errorf("Expected 4 cells used, got %d", n)
	}
	if c.Get(1, 0).Char != '東' || c.Get(3, 0).Char != 'b' {
		t.Errorf("Unexpected layout: %q %q", c.Get(1, 0).Char, c.Get(3, 0).Char)
	}
}

func TestBlit(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(5, 2)

	c := NewCanvas(3, 1)
	c.Set(2, 0, 'x', StyleLabel)
	c.Blit(screen, 1, 1)
	screen.Show()

	if r, _, _, _ := screen.GetContent(3, 1); r != 'x' {
		t.Errorf("Expected 'x' at (3, 1), got %q", r)
	}
}
