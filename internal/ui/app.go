package ui

import (
	"context"
	"fmt"
	"math"

	"geoview/internal/debug"
	"geoview/internal/geo"
	"geoview/internal/render"
	"geoview/internal/viewport"

	"github.com/gdamore/tcell/v2"
)

// panStep is how many cells an arrow key moves the view
const panStep = 4

// App is the main application controller
type App struct {
	screen    tcell.Screen
	viewport  *viewport.Viewport
	renderer  *render.MapRenderer
	statusBar *StatusBar
	legend    *Legend
	grid      render.Grid
	stopZoom  func()
}

// NewApp initializes screen and sizes the viewport to it. Layers and markers
// are added through Renderer before Run.
func NewApp(screen tcell.Screen, v *viewport.Viewport, grid render.Grid) (*App, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse()
	screen.Clear()

	cols, rows := screen.Size()
	if err := v.Resize(grid.Size(cols, rows)); err != nil {
		screen.Fini()
		return nil, fmt.Errorf("failed to size viewport: %w", err)
	}

	app := &App{
		screen:    screen,
		viewport:  v,
		renderer:  render.NewMapRenderer(v, render.NewCanvas(cols, rows), grid),
		statusBar: NewStatusBar(),
		legend:    &Legend{},
		grid:      grid,
	}
	app.renderer.AddOverlay(app.statusBar)
	app.renderer.AddOverlay(app.legend)

	app.stopZoom = v.Events().On(viewport.EventZoom, func(e viewport.Event) {
		debug.Logger().Debug("zoom", "level", e.Level, "resolution", e.Resolution)
	})

	return app, nil
}

// Renderer returns the map renderer so callers can add layers and markers
func (a *App) Renderer() *render.MapRenderer {
	return a.renderer
}

// Run draws the map and handles input until quit or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	screen := a.screen
	go func() {
		<-ctx.Done()
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	a.render()

	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
			return nil
		}
		if !a.handleEvent(ev) {
			return nil // Quit requested
		}
		a.render()
	}
}

// render renders the map to the screen
func (a *App) render() {
	a.renderer.Render()
	a.renderer.Canvas().Blit(a.screen, 0, 0)
	a.screen.Show()
}

// handleEvent processes keyboard, mouse and resize events
func (a *App) handleEvent(ev tcell.Event) bool {
	var err error

	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			return false

		case tcell.KeyUp:
			err = a.viewport.MoveBy(0, -a.rowPixels(panStep))
		case tcell.KeyDown:
			err = a.viewport.MoveBy(0, a.rowPixels(panStep))
		case tcell.KeyLeft:
			err = a.viewport.MoveBy(-panStep, 0)
		case tcell.KeyRight:
			err = a.viewport.MoveBy(panStep, 0)

		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false

			case '+', '=':
				err = a.zoom(1, nil)

			case '-', '_':
				err = a.zoom(-1, nil)

			case '?':
				a.legend.Toggle()

			case 'c', 'C':
				err = a.viewport.SetCenter(a.viewport.Transform().Projection().DefaultCenter())
			}
		}

	case *tcell.EventMouse:
		buttons := ev.Buttons()
		if buttons&(tcell.WheelUp|tcell.WheelDown) != 0 {
			x, y := ev.Position()
			at := a.grid.Pixel(geo.Point{X: x, Y: y})
			if buttons&tcell.WheelUp != 0 {
				err = a.zoom(1, &at)
			} else {
				err = a.zoom(-1, &at)
			}
		}

	case *tcell.EventResize:
		err = a.handleResize()
	}

	if err != nil {
		debug.Logger().Warn("view change rejected", "error", err)
	}
	return true
}

// zoom steps to the next whole level, keeping the point under at fixed
func (a *App) zoom(step float64, at *geo.XY) error {
	return a.viewport.SetLevel(math.Round(a.viewport.Level())+step, at)
}

// rowPixels converts a row count to viewport pixels
func (a *App) rowPixels(rows int) float64 {
	_, h := a.grid.Size(0, rows)
	return h
}

// handleResize handles terminal resize events
func (a *App) handleResize() error {
	a.screen.Sync()
	cols, rows := a.screen.Size()

	a.renderer.UpdateCanvas(render.NewCanvas(cols, rows))
	return a.viewport.Resize(a.grid.Size(cols, rows))
}

// cleanup performs cleanup before exit; it is safe to call twice
func (a *App) cleanup() {
	if a.stopZoom != nil {
		a.stopZoom()
		a.stopZoom = nil
	}

	if a.screen != nil {
		a.screen.Fini()
		a.screen = nil
	}
}
