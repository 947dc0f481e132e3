package ui

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"geoview/internal/geo"
	"geoview/internal/render"
	"geoview/internal/viewport"

	"github.com/gdamore/tcell/v2"
)

func newTestApp(t *testing.T) (*App, tcell.SimulationScreen, *viewport.Viewport) {
	t.Helper()
	v, err := viewport.New(geo.SphericalMercator{})
	if err != nil {
		t.Fatalf("Failed to create viewport: %v", err)
	}

	sim := tcell.NewSimulationScreen("UTF-8")
	app, err := NewApp(sim, v, render.Grid{Aspect: 2})
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(app.cleanup)
	return app, sim, v
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestStatusBarText(t *testing.T) {
	v, err := viewport.New(geo.SphericalMercator{}, viewport.WithSize(80, 50))
	if err != nil {
		t.Fatalf("Failed to create viewport: %v", err)
	}

	sb := NewStatusBar()
	b := v.Attach(sb)
	if b.Managed() {
		t.Error("Expected status bar to be unmanaged")
	}

	text := sb.Text()
	for _, want := range []string{"39.7406, -104.9854", "level 8.00", "611.5 m/px"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in status text, got %q", want, text)
		}
	}

	if err := v.SetLevel(0, nil); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if !strings.Contains(sb.Text(), "156,543.0 m/px") {
		t.Errorf("Expected grouped resolution after zoom out, got %q", sb.Text())
	}

	if err := v.MoveBy(10, 0); err != nil {
		t.Fatalf("MoveBy failed: %v", err)
	}
	if sb.Text() == text {
		t.Error("Expected status text to refresh on pan")
	}
}

func TestStatusBarDraw(t *testing.T) {
	sb := NewStatusBar()
	sb.text = " hello "
	c := render.NewCanvas(20, 5)

	sb.DrawOverlay(c)
	if got := c.Get(1, 4).Char; got != 'h' {
		t.Errorf("Expected text on the last row, got %q", got)
	}
	if got := c.Get(19, 4).Style; got != render.StyleStatus {
		t.Error("Expected the whole row filled with the status style")
	}

	c.Clear()
	sb.SetVisible(false)
	sb.DrawOverlay(c)
	if got := c.Get(1, 4).Char; got != ' ' {
		t.Errorf("Expected hidden status bar to draw nothing, got %q", got)
	}
}

func TestAppSizesViewport(t *testing.T) {
	_, sim, v := newTestApp(t)

	cols, rows := sim.Size()
	w, h := v.Size()
	if w != float64(cols) || h != float64(rows)*2 {
		t.Errorf("Expected viewport %dx%d pixels, got %vx%v", cols, rows*2, w, h)
	}
}

func TestAppArrowKeysPan(t *testing.T) {
	app, _, v := newTestApp(t)
	start := v.Center()

	app.handleEvent(key(tcell.KeyRight))
	if v.Center().Lon <= start.Lon {
		t.Errorf("Expected right arrow to move east, got %v", v.Center())
	}

	app.handleEvent(key(tcell.KeyUp))
	if v.Center().Lat <= start.Lat {
		t.Errorf("Expected up arrow to move north, got %v", v.Center())
	}

	app.handleEvent(runeKey('c'))
	if v.Center() != start {
		t.Errorf("Expected recenter on %v, got %v", start, v.Center())
	}
}

func TestAppZoomKeys(t *testing.T) {
	app, _, v := newTestApp(t)

	zooms := 0
	v.Events().On(viewport.EventZoom, func(viewport.Event) { zooms++ })

	app.handleEvent(runeKey('+'))
	if math.Abs(v.Level()-9) > 1e-9 {
		t.Errorf("Expected level 9, got %v", v.Level())
	}

	app.handleEvent(runeKey('-'))
	app.handleEvent(runeKey('-'))
	if math.Abs(v.Level()-7) > 1e-9 {
		t.Errorf("Expected level 7, got %v", v.Level())
	}

	if zooms != 3 {
		t.Errorf("Expected 3 zoom events, got %d", zooms)
	}
}

func TestAppWheelZoomsAtCursor(t *testing.T) {
	app, _, v := newTestApp(t)

	at := app.grid.Pixel(geo.Point{X: 10, Y: 5})
	before, ok := v.ToLatLng(at)
	if !ok {
		t.Fatal("Expected cursor point inside the domain")
	}

	app.handleEvent(tcell.NewEventMouse(10, 5, tcell.WheelUp, tcell.ModNone))
	if math.Abs(v.Level()-9) > 1e-9 {
		t.Errorf("Expected level 9, got %v", v.Level())
	}

	after, _ := v.ToLatLng(at)
	if math.Abs(after.Lat-before.Lat) > 1e-6 || math.Abs(after.Lon-before.Lon) > 1e-6 {
		t.Errorf("Expected %v to stay under the cursor, got %v", before, after)
	}
}

func TestAppQuitKeys(t *testing.T) {
	app, _, _ := newTestApp(t)

	if app.handleEvent(runeKey('q')) {
		t.Error("Expected q to quit")
	}
	if app.handleEvent(key(tcell.KeyEscape)) {
		t.Error("Expected Esc to quit")
	}
	if !app.handleEvent(runeKey('x')) {
		t.Error("Expected unbound key to keep running")
	}
}

func TestAppResize(t *testing.T) {
	app, sim, v := newTestApp(t)

	sim.SetSize(60, 30)
	app.handleEvent(tcell.NewEventResize(60, 30))

	if w, h := v.Size(); w != 60 || h != 60 {
		t.Errorf("Expected viewport 60x60 pixels, got %vx%v", w, h)
	}
	if c := app.Renderer().Canvas(); c.Width() != 60 || c.Height() != 30 {
		t.Errorf("Expected 60x30 canvas, got %dx%d", c.Width(), c.Height())
	}
}

func TestAppRenderDrawsStatusBar(t *testing.T) {
	app, sim, _ := newTestApp(t)

	app.render()

	cells, width, height := sim.GetContents()
	row := height - 1
	var b strings.Builder
	for x := 0; x < width; x++ {
		if r := cells[row*width+x].Runes; len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	if !strings.Contains(b.String(), "level 8.00") {
		t.Errorf("Expected status bar on the bottom row, got %q", b.String())
	}
}

func TestAppRunStopsOnCancel(t *testing.T) {
	app, _, _ := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean exit, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAppLegendToggle(t *testing.T) {
	app, _, _ := newTestApp(t)
	c := app.Renderer().Canvas()

	app.Renderer().Render()
	if got := c.Get(0, 0).Char; got == '┌' {
		t.Error("Expected legend hidden by default")
	}

	app.handleEvent(runeKey('?'))
	app.Renderer().Render()
	if got := c.Get(0, 0).Char; got != '┌' {
		t.Errorf("Expected legend frame corner, got %q", got)
	}

	// Symbols follow the key list and a blank line
	row := len(legendKeys) + 2
	if got := c.Get(2, row).Char; got != render.GetCharForFeature(geo.FeatureCoastline) {
		t.Errorf("Expected coastline symbol at row %d, got %q", row, got)
	}
	if got := c.Get(4, row).Char; got != 'C' {
		t.Errorf("Expected coastline label, got %q", got)
	}

	app.handleEvent(runeKey('?'))
	if app.legend.Visible() {
		t.Error("Expected second toggle to hide the legend")
	}
}
